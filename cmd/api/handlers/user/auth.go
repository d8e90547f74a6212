package user

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/api/router/authfunc"
	"ytgify.com/cmd/model"
	"ytgify.com/cmd/user/service"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/jwt"
)

type RegisterParam struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginParam struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RefreshParam struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutParam struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User *model.Account `json:"user"`
	*jwt.TokenPair
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func Register(ctx context.Context, c *app.RequestContext) {
	var req RegisterParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	u, err := service.NewCreateUserService(ctx).CreateUser(&service.CreateUserRequest{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	issue(ctx, c, u)
}

func Login(ctx context.Context, c *app.RequestContext) {
	var req LoginParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	u, err := service.NewLoginUserService(ctx).LoginUser(&service.LoginUserRequest{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	issue(ctx, c, u)
}

func issue(ctx context.Context, c *app.RequestContext, u *model.User) {
	pair, err := service.NewTokenService(ctx).Issue(u.ID)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	hlog.CtxInfof(ctx, "user %d signed in", u.ID)
	handlers.SendResponse(c, errno.Success, &AuthResponse{
		User:      &model.Account{User: u, Email: u.Email},
		TokenPair: pair,
	})
}

func Refresh(ctx context.Context, c *app.RequestContext) {
	var req RefreshParam
	if err := handlers.Bind(c, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if req.RefreshToken == "" {
		handlers.SendResponse(c, errno.ParamErr.WithMessage("refresh_token is required"), nil)
		return
	}
	token, exp, err := service.NewTokenService(ctx).Refresh(req.RefreshToken)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendResponse(c, errno.Success, &AccessTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// Logout 注销当前 access token, 同时提交 refresh token 时一并注销
func Logout(ctx context.Context, c *app.RequestContext) {
	var req LogoutParam
	_ = c.Bind(&req)

	svc := service.NewTokenService(ctx)
	if err := svc.Revoke(authfunc.Claims(c)); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if req.RefreshToken != "" {
		claims, err := jwt.ParseRefreshTokenString(req.RefreshToken)
		if err == nil && claims.UserID == handlers.UserID(c) {
			if err := svc.Revoke(claims); err != nil {
				handlers.SendResponse(c, err, nil)
				return
			}
		}
	}
	handlers.SendResponse(c, errno.Success, nil)
}

func Me(ctx context.Context, c *app.RequestContext) {
	account, err := service.NewGetUserInfoService(ctx).Account(handlers.UserID(c))
	handlers.SendResponse(c, err, account)
}
