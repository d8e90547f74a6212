package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	relationdb "ytgify.com/cmd/relation/dal/db"
	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/errno"
)

type GetUserInfoService struct {
	ctx context.Context
}

func NewGetUserInfoService(ctx context.Context) *GetUserInfoService {
	return &GetUserInfoService{ctx: ctx}
}

func (s *GetUserInfoService) GetByID(id int64) (*model.User, error) {
	u, err := db.GetUserByID(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.UserNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetUserByID failed")
	}
	return u, nil
}

func (s *GetUserInfoService) GetByUsername(username string) (*model.User, error) {
	u, err := db.GetUserByUsername(s.ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.UserNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetUserByUsername failed")
	}
	return u, nil
}

// Profile 公开资料, 附带观看者是否已关注
func (s *GetUserInfoService) Profile(viewerID int64, username string) (*model.UserProfile, error) {
	u, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	p := &model.UserProfile{User: u, IsSelf: viewerID == u.ID}
	if viewerID != 0 && viewerID != u.ID {
		if p.IsFollowing, err = relationdb.IsFollowing(s.ctx, viewerID, u.ID); err != nil {
			return nil, errors.WithMessage(err, "dao.IsFollowing failed")
		}
	}
	return p, nil
}

func (s *GetUserInfoService) Account(id int64) (*model.Account, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &model.Account{User: u, Email: u.Email}, nil
}
