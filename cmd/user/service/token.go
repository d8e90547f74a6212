package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/cmd/user/dal/db"
	"ytgify.com/cmd/user/infras/redis"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/jwt"
)

type TokenService struct {
	ctx context.Context
}

func NewTokenService(ctx context.Context) *TokenService {
	return &TokenService{ctx: ctx}
}

func (s *TokenService) Issue(userID int64) (*jwt.TokenPair, error) {
	pair, err := jwt.GenerateTokenPair(userID)
	if err != nil {
		return nil, errors.WithMessage(err, "generate token pair")
	}
	return pair, nil
}

// Refresh 用未注销的 refresh token 换取新的 access token
func (s *TokenService) Refresh(refreshToken string) (string, time.Time, error) {
	claims, err := jwt.ParseRefreshTokenString(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	denied, err := s.IsRevoked(claims.Jti)
	if err != nil {
		return "", time.Time{}, err
	}
	if denied {
		return "", time.Time{}, errno.TokenRevokedErr
	}
	if _, err = db.GetUserByID(s.ctx, claims.UserID); err != nil {
		return "", time.Time{}, errno.TokenInvailedErr.WithMessage("user no longer exists")
	}
	return jwt.GenerateAccessToken(claims.UserID)
}

// Revoke 将 token 加入黑名单, 数据库为准, redis 作为快速判断
func (s *TokenService) Revoke(claims *jwt.Claims) error {
	if claims == nil || claims.Jti == "" {
		return nil
	}
	exp := claims.ExpiresAt
	if exp.IsZero() {
		exp = time.Now().Add(24 * time.Hour)
	}
	if err := db.DenyToken(s.ctx, claims.Jti, exp); err != nil {
		return err
	}
	// 鉴权只看 redis, 写缓存失败必须报错让客户端重试
	if err := redis.DenyToken(s.ctx, claims.Jti, exp); err != nil {
		hlog.CtxErrorf(s.ctx, "cache revoked token %s failed: %v", claims.Jti, err)
		return errors.WithMessage(err, "cache revoked token")
	}
	hlog.CtxInfof(s.ctx, "token %s of user %d revoked", claims.Jti, claims.UserID)
	return nil
}

// IsRevoked redis 可用时以 redis 为准, 未配置或出错时回源数据库
func (s *TokenService) IsRevoked(jti string) (bool, error) {
	if denied, ok := redis.IsTokenDenied(s.ctx, jti); ok {
		return denied, nil
	}
	denied, err := db.IsTokenDenied(s.ctx, jti)
	if err != nil {
		return false, errors.WithMessage(err, "dao.IsTokenDenied failed")
	}
	return denied, nil
}

// PurgeExpired 清理已过期的黑名单记录
func (s *TokenService) PurgeExpired() (int64, error) {
	return db.PurgeExpiredTokens(s.ctx, time.Now())
}
