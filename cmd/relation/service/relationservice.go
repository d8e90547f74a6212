package service

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/relation/dal/db"
	userservice "ytgify.com/cmd/user/service"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/utils"
)

type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
}

type RelationService struct {
	ctx      context.Context
	producer mq.MessageProducer
}

func NewRelationService(ctx context.Context, producer mq.MessageProducer) *RelationService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &RelationService{ctx: ctx, producer: producer}
}

// Follow 关注用户, 重复关注不报错
func (s *RelationService) Follow(followerID int64, username string) (*FollowResult, error) {
	return s.set(followerID, username, true)
}

// Unfollow 取消关注, 未关注时不报错
func (s *RelationService) Unfollow(followerID int64, username string) (*FollowResult, error) {
	return s.set(followerID, username, false)
}

// Toggle 已关注则取消, 否则关注
func (s *RelationService) Toggle(followerID int64, username string) (*FollowResult, error) {
	target, err := userservice.NewGetUserInfoService(s.ctx).GetByUsername(username)
	if err != nil {
		return nil, err
	}
	following, err := db.IsFollowing(s.ctx, followerID, target.ID)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.IsFollowing failed")
	}
	return s.set(followerID, username, !following)
}

func (s *RelationService) set(followerID int64, username string, follow bool) (*FollowResult, error) {
	target, err := userservice.NewGetUserInfoService(s.ctx).GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, errno.ValidationErr.WithMessage("You cannot follow yourself")
	}

	var changed bool
	key := "follow:" + strconv.FormatInt(followerID, 10) + ":" + strconv.FormatInt(target.ID, 10)
	err = lock.WithLock(s.ctx, key, func() error {
		var err error
		if follow {
			changed, err = db.CreateFollow(s.ctx, followerID, target.ID)
		} else {
			changed, err = db.DeleteFollow(s.ctx, followerID, target.ID)
		}
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "update follow failed")
	}

	if changed {
		action := "unfollow"
		if follow {
			action = "follow"
		}
		hlog.CtxInfof(s.ctx, "user %d %s user %d", followerID, action, target.ID)
		mq.Report(s.ctx, mq.FollowEventExchange, s.producer.PublishFollowEvent(s.ctx, &mq.FollowEvent{
			FollowerID:  followerID,
			FollowingID: target.ID,
			ActionType:  action,
		}))
	}

	updated, err := userservice.NewGetUserInfoService(s.ctx).GetByID(target.ID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Following: follow, FollowersCount: updated.FollowersCount}, nil
}

// FollowerList 关注了 username 的用户
func (s *RelationService) FollowerList(viewerID int64, username string, page, perPage int) (*model.PageResult[*model.UserProfile], error) {
	return s.list(viewerID, username, page, perPage, db.GetFollowerListPaged)
}

// FollowingList username 关注的用户
func (s *RelationService) FollowingList(viewerID int64, username string, page, perPage int) (*model.PageResult[*model.UserProfile], error) {
	return s.list(viewerID, username, page, perPage, db.GetFollowingListPaged)
}

type pagedUsers func(ctx context.Context, userID int64, offset, limit int) ([]*model.User, int64, error)

func (s *RelationService) list(viewerID int64, username string, page, perPage int, fetch pagedUsers) (*model.PageResult[*model.UserProfile], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	target, err := userservice.NewGetUserInfoService(s.ctx).GetByUsername(username)
	if err != nil {
		return nil, err
	}
	users, total, err := fetch(s.ctx, target.ID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao list follows failed")
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed, err := db.FollowingSet(s.ctx, viewerID, ids)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.FollowingSet failed")
	}
	items := make([]*model.UserProfile, 0, len(users))
	for _, u := range users {
		items = append(items, &model.UserProfile{User: u, IsFollowing: followed[u.ID], IsSelf: u.ID == viewerID})
	}
	return model.NewPage(items, page, perPage, total), nil
}

// FollowingIDs userID 关注的全部用户, 首页 feed 用
func (s *RelationService) FollowingIDs(userID int64) ([]int64, error) {
	ids, err := db.GetFollowingIDs(s.ctx, userID)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetFollowingIDs failed")
	}
	return ids, nil
}
