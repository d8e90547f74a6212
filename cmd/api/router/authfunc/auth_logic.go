package authfunc

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"ytgify.com/cmd/api/handlers"
	userservice "ytgify.com/cmd/user/service"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/jwt"
)

// ClaimsKey 当前请求的 access token 声明, 注销时使用
const ClaimsKey = "jwt_claims"

func Auth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		AccessTokenAuthFunc(true),
	)
}

// OptionalAuth 有合法 token 时附加身份, 否则按匿名处理
func OptionalAuth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		AccessTokenAuthFunc(false),
	)
}

func AccessTokenAuthFunc(required bool) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		claims, err := authenticate(ctx, c)
		if err != nil {
			if required {
				handlers.SendResponse(c, err, nil)
				c.Abort()
				return
			}
			c.Next(ctx)
			return
		}
		c.Set(constants.IdentityKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next(ctx)
	}
}

func authenticate(ctx context.Context, c *app.RequestContext) (*jwt.Claims, error) {
	claims, err := jwt.ParseAccessToken(ctx, c)
	if err != nil {
		return nil, err
	}
	revoked, err := userservice.NewTokenService(ctx).IsRevoked(claims.Jti)
	if err != nil {
		hlog.CtxErrorf(ctx, "check token denylist failed: %v", err)
		return nil, errno.ServiceErr
	}
	if revoked {
		return nil, errno.TokenRevokedErr
	}
	return claims, nil
}

// Claims 取出 Auth 写入的声明
func Claims(c *app.RequestContext) *jwt.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}
