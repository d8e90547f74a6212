package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/utils"
)

type CreateUserRequest struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type CreateUserService struct {
	ctx context.Context
}

func NewCreateUserService(ctx context.Context) *CreateUserService {
	return &CreateUserService{ctx: ctx}
}

func (v *CreateUserService) CreateUser(req *CreateUserRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = utils.NormalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	usernameTaken, emailTaken, err := db.CheckDuplicate(v.ctx, req.Username, req.Email)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.CheckDuplicate failed")
	}
	if usernameTaken {
		return nil, errno.UserAlreadyExistErr.WithMessage("Username has already been taken")
	}
	if emailTaken {
		return nil, errno.UserAlreadyExistErr.WithMessage("Email has already been taken")
	}

	digest, err := utils.Crypt(req.Password)
	if err != nil {
		return nil, errors.WithMessage(err, "Password fail to crypt")
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordDigest: digest,
		DisplayName:    displayName,
	}
	if err = db.CreateUser(v.ctx, user); err != nil {
		// 并发注册时检查之后才撞上唯一索引
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errno.UserAlreadyExistErr.WithMessage("Username or email has already been taken")
		}
		return nil, errors.WithMessage(err, "dao.CreateUser failed")
	}
	hlog.CtxInfof(v.ctx, "user %d registered as %s", user.ID, user.Username)
	return user, nil
}

func validateCreate(req *CreateUserRequest) error {
	n := utf8.RuneCountInString(req.Username)
	switch {
	case n < constants.MinUsernameLen || n > constants.MaxUsernameLen:
		return errno.ValidationErr.WithMessage("Username must be 3-30 characters")
	case !utils.IsValidUsername(req.Username):
		return errno.ValidationErr.WithMessage("Username may only contain letters, numbers and underscores")
	case !utils.IsValidEmail(req.Email):
		return errno.ValidationErr.WithMessage("Email is invalid")
	case utf8.RuneCountInString(req.Password) < constants.MinPasswordLen:
		return errno.ValidationErr.WithMessage("Password is too short (minimum is 6 characters)")
	case utf8.RuneCountInString(req.DisplayName) > constants.MaxDisplayNameLen:
		return errno.ValidationErr.WithMessage("Display name is too long (maximum is 50 characters)")
	}
	return nil
}
