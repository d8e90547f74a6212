package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	gifdb "ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/interaction/dal/db"
	"ytgify.com/cmd/interaction/infras/redis"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/metrics"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/utils"
)

type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// LikeService 点赞, 点赞关系以数据库为准, redis 只缓存用户点赞过的 gif
type LikeService struct {
	ctx      context.Context
	producer mq.MessageProducer
}

func NewLikeService(ctx context.Context, producer mq.MessageProducer) *LikeService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &LikeService{ctx: ctx, producer: producer}
}

// Toggle 已点赞则取消, 否则点赞
func (s *LikeService) Toggle(userID, gifID int64) (*LikeResult, error) {
	gif, err := visibleGif(s.ctx, userID, gifID)
	if err != nil {
		return nil, err
	}

	var (
		liked   bool
		changed bool
		count   int64
	)
	err = lock.WithLock(s.ctx, fmt.Sprintf("like:%d:%d", userID, gifID), func() error {
		isLiked, err := db.IsLiked(s.ctx, userID, gifID)
		if err != nil {
			return err
		}
		if isLiked {
			changed, count, err = db.DeleteLike(s.ctx, userID, gif)
			liked = false
		} else {
			changed, count, err = db.CreateLike(s.ctx, userID, gif)
			liked = true
		}
		return err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "toggle like failed")
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	if !changed {
		return &LikeResult{Liked: liked, LikeCount: count}, nil
	}
	metrics.LikesTotal.WithLabelValues(action).Inc()
	s.syncCache(userID, gifID, liked)
	hlog.CtxInfof(s.ctx, "user %d %s gif %d, like_count=%d", userID, action, gifID, count)

	mq.Report(s.ctx, mq.LikeEventExchange, s.producer.PublishLikeEvent(s.ctx, &mq.LikeEvent{
		UserID:     userID,
		GifID:      gifID,
		OwnerID:    gif.UserID,
		ActionType: action,
		LikeCount:  count,
	}))
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// likesCacheLock 用户点赞缓存的锁, 预热和写后同步互斥, 预热不会覆盖更新的结果
func likesCacheLock(userID int64) string {
	return fmt.Sprintf("likes:%d", userID)
}

func (s *LikeService) syncCache(userID, gifID int64, liked bool) {
	err := lock.WithLock(s.ctx, likesCacheLock(userID), func() error {
		if liked {
			return redis.AddLike(s.ctx, userID, gifID, time.Now())
		}
		return redis.RemoveLike(s.ctx, userID, gifID)
	})
	if err != nil {
		hlog.CtxWarnf(s.ctx, "Update like cache of user %d failed: %v", userID, err)
		redis.Invalidate(s.ctx, userID)
	}
}

// LikedBy 返回 gifIDs 中 userID 点赞过的子集, 先查缓存, 未命中时在锁内从数据库预热.
// 没有缓存或拿不到锁时直接查这一批
func (s *LikeService) LikedBy(userID int64, gifIDs []int64) (map[int64]bool, error) {
	if userID == 0 || len(gifIDs) == 0 {
		return map[int64]bool{}, nil
	}
	if res, ok := redis.LikedSet(s.ctx, userID, gifIDs); ok {
		return res, nil
	}
	if redis.Enabled() {
		var likes []*model.Like
		err := lock.WithLock(s.ctx, likesCacheLock(userID), func() error {
			var err error
			if likes, err = db.UserLikes(s.ctx, userID); err != nil {
				return errors.WithMessage(err, "dao.UserLikes failed")
			}
			if err := redis.WarmLikes(s.ctx, userID, likes, constants.LikeCacheTTL); err != nil {
				hlog.CtxWarnf(s.ctx, "Warm like cache of user %d failed: %v", userID, err)
			}
			return nil
		})
		if err == nil {
			all := make(map[int64]bool, len(likes))
			for _, l := range likes {
				all[l.GifID] = true
			}
			res := make(map[int64]bool, len(gifIDs))
			for _, id := range gifIDs {
				if all[id] {
					res[id] = true
				}
			}
			return res, nil
		}
		hlog.CtxWarnf(s.ctx, "Warm like cache of user %d skipped: %v", userID, err)
	}
	res, err := db.LikedSet(s.ctx, userID, gifIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.LikedSet failed")
	}
	return res, nil
}

// Decorate 附加 liked_by_viewer
func (s *LikeService) Decorate(viewerID int64, gifs []*model.Gif) ([]*model.GifInfo, error) {
	ids := make([]int64, 0, len(gifs))
	for _, g := range gifs {
		ids = append(ids, g.ID)
	}
	liked, err := s.LikedBy(viewerID, ids)
	if err != nil {
		return nil, err
	}
	res := make([]*model.GifInfo, 0, len(gifs))
	for _, g := range gifs {
		res = append(res, &model.GifInfo{Gif: g, LikedByViewer: liked[g.ID]})
	}
	return res, nil
}

// ListLikedGifs userID 点赞过的 gif, 对 viewerID 不可见的不返回
func (s *LikeService) ListLikedGifs(viewerID, userID int64, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	ids, total, err := db.LikedGifIDs(s.ctx, userID, viewerID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.LikedGifIDs failed")
	}
	gifs, err := gifdb.MGetGifs(s.ctx, ids)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.MGetGifs failed")
	}
	items, err := s.Decorate(viewerID, gifs)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, total), nil
}

// visibleGif 读取 viewerID 可见的 gif, 不可见与不存在同样返回 404
func visibleGif(ctx context.Context, viewerID, gifID int64) (*model.Gif, error) {
	gif, err := gifdb.GetGif(ctx, gifID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.GifNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetGif failed")
	}
	if !gif.VisibleTo(viewerID) {
		return nil, errno.GifNotExistErr
	}
	return gif, nil
}
