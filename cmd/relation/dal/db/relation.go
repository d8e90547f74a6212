package db

import (
	"context"

	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	userdb "ytgify.com/cmd/user/dal/db"
	"ytgify.com/pkg/database"
)

// CreateFollow followerID 关注 followingID, 同一事务中更新双方计数.
// 已关注时返回 false 且不修改计数
func CreateFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	created := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := database.InsertIgnore(tx, &model.Follow{FollowerID: followerID, FollowingID: followingID})
		if err != nil || !ok {
			return err
		}
		created = true
		if err := userdb.AdjustCounter(tx, followerID, "following_count", 1); err != nil {
			return err
		}
		return userdb.AdjustCounter(tx, followingID, "followers_count", 1)
	})
	return created, err
}

// DeleteFollow 取消关注, 未关注时返回 false
func DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	deleted := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := userdb.AdjustCounter(tx, followerID, "following_count", -1); err != nil {
			return err
		}
		return userdb.AdjustCounter(tx, followingID, "followers_count", -1)
	})
	return deleted, err
}

func IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowingSet 返回 followerID 已关注的 ids 子集
func FollowingSet(ctx context.Context, followerID int64, ids []int64) (map[int64]bool, error) {
	res := make(map[int64]bool, len(ids))
	if followerID == 0 || len(ids) == 0 {
		return res, nil
	}
	var list []int64
	if err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, ids).
		Pluck("following_id", &list).Error; err != nil {
		return nil, err
	}
	for _, id := range list {
		res[id] = true
	}
	return res, nil
}

// GetFollowerListPaged 关注 userID 的用户, 最近关注的在前
func GetFollowerListPaged(ctx context.Context, userID int64, offset, limit int) ([]*model.User, int64, error) {
	var total int64
	q := DB.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []*model.User
	err := DB.WithContext(ctx).Table("users").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Offset(offset).Limit(limit).
		Select("users.*").
		Find(&users).Error
	return users, total, err
}

// GetFollowingListPaged userID 关注的用户
func GetFollowingListPaged(ctx context.Context, userID int64, offset, limit int) ([]*model.User, int64, error) {
	var total int64
	q := DB.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []*model.User
	err := DB.WithContext(ctx).Table("users").
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Offset(offset).Limit(limit).
		Select("users.*").
		Find(&users).Error
	return users, total, err
}

func GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	list := make([]int64, 0)
	if err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).Pluck("following_id", &list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
