package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/database"
)

func CreateUser(ctx context.Context, user *model.User) error {
	if err := DB.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(err, "CreateUser failed")
	}
	return nil
}

func GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByLogin 用户名或邮箱登录
func GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := DB.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CheckDuplicate 返回用户名 邮箱是否已被占用
func CheckDuplicate(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var users []model.User
	if err = DB.WithContext(ctx).Select("username", "email").
		Where("username = ? OR email = ?", username, email).Find(&users).Error; err != nil {
		return false, false, err
	}
	for _, u := range users {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	return DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func UpdatePassword(ctx context.Context, id int64, digest string) error {
	return DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_digest", digest).Error
}

// AdjustCounter 在事务中调整用户计数列
func AdjustCounter(tx *gorm.DB, userID int64, column string, delta int64) error {
	expr := database.Incr(column, delta)
	if delta < 0 {
		expr = database.Decr(column, -delta)
	}
	return tx.Model(&model.User{}).Where("id = ?", userID).UpdateColumn(column, expr).Error
}

func DenyToken(ctx context.Context, jti string, exp time.Time) error {
	err := DB.WithContext(ctx).
		Where(model.JwtDenylist{Jti: jti}).
		Attrs(model.JwtDenylist{Exp: exp}).
		FirstOrCreate(&model.JwtDenylist{}).Error
	return errors.WithMessage(err, "deny token")
}

func IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.JwtDenylist{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpiredTokens 过期的 token 本身已不可用, 无需继续保留
func PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := DB.WithContext(ctx).Where("exp < ?", now).Delete(&model.JwtDenylist{})
	return res.RowsAffected, res.Error
}
