package jwt

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hertz-contrib/jwt"
	"github.com/pkg/errors"

	"ytgify.com/config"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/utils"
)

var (
	AccessTokenJwtMiddleware  *jwt.HertzJWTMiddleware
	RefreshTokenJwtMiddleware *jwt.HertzJWTMiddleware
)

// Claims 从 token 中解析出的身份信息
type Claims struct {
	UserID    int64
	Jti       string
	Type      string
	ExpiresAt time.Time
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type identity struct {
	userID    int64
	tokenType string
}

func Init() error {
	cfg := config.ConfigInfo.Jwt
	return Setup(cfg.Secret, cfg.Realm, cfg.AccessTTL, cfg.RefreshTTL)
}

// Setup 创建 access / refresh 两个中间件实例, 两者共用密钥, 以 typ 声明区分
func Setup(secret, realm string, accessTTL, refreshTTL time.Duration) error {
	var err error
	AccessTokenJwtMiddleware, err = newMiddleware(secret, realm, accessTTL)
	if err != nil {
		return errors.WithMessage(err, "init access token middleware")
	}
	RefreshTokenJwtMiddleware, err = newMiddleware(secret, realm, refreshTTL)
	if err != nil {
		return errors.WithMessage(err, "init refresh token middleware")
	}
	return nil
}

func newMiddleware(secret, realm string, ttl time.Duration) (*jwt.HertzJWTMiddleware, error) {
	return jwt.New(&jwt.HertzJWTMiddleware{
		Realm:         realm,
		Key:           []byte(secret),
		Timeout:       ttl,
		MaxRefresh:    ttl,
		IdentityKey:   constants.IdentityKey,
		TokenLookup:   "header: Authorization, query: token, cookie: jwt",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if v, ok := data.(identity); ok {
				return jwt.MapClaims{
					constants.IdentityKey:  v.userID,
					constants.JwtIDKey:     uuid.NewString(),
					constants.TokenTypeKey: v.tokenType,
				}
			}
			return jwt.MapClaims{}
		},
	})
}

// GenerateTokenPair 为用户签发一对 token
func GenerateTokenPair(userID int64) (*TokenPair, error) {
	access, accessExp, err := AccessTokenJwtMiddleware.TokenGenerator(identity{userID, constants.AccessToken})
	if err != nil {
		return nil, errors.WithMessage(err, "generate access token")
	}
	refresh, refreshExp, err := RefreshTokenJwtMiddleware.TokenGenerator(identity{userID, constants.RefreshToken})
	if err != nil {
		return nil, errors.WithMessage(err, "generate refresh token")
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// GenerateAccessToken 用合法的 refresh token 换取新的 access token
func GenerateAccessToken(userID int64) (string, time.Time, error) {
	return AccessTokenJwtMiddleware.TokenGenerator(identity{userID, constants.AccessToken})
}

// ParseAccessToken 从请求中取出并校验 access token
func ParseAccessToken(ctx context.Context, c *app.RequestContext) (*Claims, error) {
	token, err := AccessTokenJwtMiddleware.ParseToken(ctx, c)
	if err != nil {
		return nil, errno.TokenInvailedErr.WithMessage(err.Error())
	}
	return claimsOf(token, constants.AccessToken)
}

func ParseRefreshTokenString(s string) (*Claims, error) {
	token, err := RefreshTokenJwtMiddleware.ParseTokenString(s)
	if err != nil {
		return nil, errno.TokenInvailedErr.WithMessage(err.Error())
	}
	return claimsOf(token, constants.RefreshToken)
}

func claimsOf(token *jwtv4.Token, wantType string) (*Claims, error) {
	mc, ok := token.Claims.(jwtv4.MapClaims)
	if !ok || !token.Valid {
		return nil, errno.TokenInvailedErr
	}
	typ, _ := mc[constants.TokenTypeKey].(string)
	if typ != wantType {
		return nil, errno.TokenInvailedErr.WithMessage("unexpected token type")
	}
	jti, _ := mc[constants.JwtIDKey].(string)
	uid := utils.Transfer(mc[constants.IdentityKey])
	if uid <= 0 || jti == "" {
		return nil, errno.TokenInvailedErr
	}
	claims := &Claims{UserID: uid, Jti: jti, Type: typ}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}
