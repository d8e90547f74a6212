package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/utils"
)

type UpdateUserRequest struct {
	DisplayName *string
	Bio         *string
}

type UpdateUserService struct {
	ctx context.Context
}

func NewUpdateUserService(ctx context.Context) *UpdateUserService {
	return &UpdateUserService{ctx: ctx}
}

func (s *UpdateUserService) UpdateUser(userID int64, req *UpdateUserRequest) (*model.Account, error) {
	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if utf8.RuneCountInString(name) > constants.MaxDisplayNameLen {
			return nil, errno.ValidationErr.WithMessage("Display name is too long (maximum is 50 characters)")
		}
		updates["display_name"] = name
	}
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > constants.MaxBioLen {
			return nil, errno.ValidationErr.WithMessage("Bio is too long (maximum is 500 characters)")
		}
		updates["bio"] = *req.Bio
	}
	if len(updates) > 0 {
		if err := db.UpdateUser(s.ctx, userID, updates); err != nil {
			return nil, errors.WithMessage(err, "dao.UpdateUser failed")
		}
	}
	return NewGetUserInfoService(s.ctx).Account(userID)
}

type ChangePasswordService struct {
	ctx context.Context
}

func NewChangePasswordService(ctx context.Context) *ChangePasswordService {
	return &ChangePasswordService{ctx: ctx}
}

func (s *ChangePasswordService) ChangePassword(userID int64, oldPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < constants.MinPasswordLen {
		return errno.ValidationErr.WithMessage("Password is too short (minimum is 6 characters)")
	}
	if oldPassword == newPassword {
		return errno.ValidationErr.WithMessage("New password must differ from the current one")
	}
	u, err := NewGetUserInfoService(s.ctx).GetByID(userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(oldPassword, u.PasswordDigest) {
		return errno.AuthorizationFailedErr.WithMessage("Current password is incorrect")
	}
	digest, err := utils.Crypt(newPassword)
	if err != nil {
		return errors.WithMessage(err, "Password fail to crypt")
	}
	return db.UpdatePassword(s.ctx, userID, digest)
}
