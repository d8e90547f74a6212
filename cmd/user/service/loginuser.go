package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/utils"
)

type LoginUserRequest struct {
	Login    string
	Password string
}

type LoginUserService struct {
	ctx context.Context
}

func NewLoginUserService(ctx context.Context) *LoginUserService {
	return &LoginUserService{ctx: ctx}
}

// LoginUser 用户名或邮箱加密码登录, 任一项不匹配都返回相同的错误
func (v *LoginUserService) LoginUser(req *LoginUserRequest) (*model.User, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, errno.AuthorizationFailedErr.WithMessage("Invalid login or password")
	}
	if strings.Contains(login, "@") {
		login = utils.NormalizeEmail(login)
	}
	user, err := db.GetUserByLogin(v.ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.AuthorizationFailedErr.WithMessage("Invalid login or password")
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetUserByLogin failed")
	}
	if !utils.VerifyPassword(req.Password, user.PasswordDigest) {
		return nil, errno.AuthorizationFailedErr.WithMessage("Invalid login or password")
	}
	return user, nil
}
