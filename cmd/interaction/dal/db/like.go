package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/database"
)

// CreateLike 点赞, 同一事务中更新 gif 的 like_count 和作者的 total_likes_received.
// 已点赞时 created 为 false, 计数不变
func CreateLike(ctx context.Context, userID int64, gif *model.Gif) (created bool, likeCount int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := database.InsertIgnore(tx, &model.Like{UserID: userID, GifID: gif.ID})
		if err != nil {
			return err
		}
		if ok {
			created = true
			if err := adjustLikeCounters(tx, gif, database.Incr); err != nil {
				return err
			}
		}
		likeCount, err = readLikeCount(tx, gif.ID)
		return err
	})
	return created, likeCount, err
}

// DeleteLike 取消点赞, 未点赞时 deleted 为 false
func DeleteLike(ctx context.Context, userID int64, gif *model.Gif) (deleted bool, likeCount int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND gif_id = ?", userID, gif.ID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			deleted = true
			if err := adjustLikeCounters(tx, gif, database.Decr); err != nil {
				return err
			}
		}
		likeCount, err = readLikeCount(tx, gif.ID)
		return err
	})
	return deleted, likeCount, err
}

func adjustLikeCounters(tx *gorm.DB, gif *model.Gif, op func(string, int64) clause.Expr) error {
	if err := tx.Model(&model.Gif{}).Where("id = ?", gif.ID).
		UpdateColumn("like_count", op("like_count", 1)).Error; err != nil {
		return err
	}
	return tx.Model(&model.User{}).Where("id = ?", gif.UserID).
		UpdateColumn("total_likes_received", op("total_likes_received", 1)).Error
}

func readLikeCount(tx *gorm.DB, gifID int64) (int64, error) {
	var counts []int64
	if err := tx.Unscoped().Model(&model.Gif{}).Where("id = ?", gifID).Pluck("like_count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

func IsLiked(ctx context.Context, userID, gifID int64) (bool, error) {
	var n int64
	err := DB.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND gif_id = ?", userID, gifID).Count(&n).Error
	return n > 0, err
}

// LikedSet 返回 ids 中 userID 点赞过的子集
func LikedSet(ctx context.Context, userID int64, gifIDs []int64) (map[int64]bool, error) {
	res := make(map[int64]bool, len(gifIDs))
	if userID == 0 || len(gifIDs) == 0 {
		return res, nil
	}
	var liked []int64
	if err := DB.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND gif_id IN ?", userID, gifIDs).
		Pluck("gif_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		res[id] = true
	}
	return res, nil
}

// UserLikes userID 的全部点赞, 用于预热缓存
func UserLikes(ctx context.Context, userID int64) ([]*model.Like, error) {
	var list []*model.Like
	err := DB.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

// LikedGifIDs userID 点赞过且 viewerID 可见的 gif, 最近点赞的在前
func LikedGifIDs(ctx context.Context, userID, viewerID int64, offset, limit int) ([]int64, int64, error) {
	q := DB.WithContext(ctx).Table("likes").
		Joins("JOIN gifs ON gifs.id = likes.gif_id").
		Where("likes.user_id = ? AND gifs.deleted_at IS NULL", userID).
		Where("(gifs.privacy = ? OR gifs.user_id = ?)", constants.PrivacyPublic, viewerID).
		Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, limit)
	err := q.Order("likes.created_at DESC, likes.id DESC").Offset(offset).Limit(limit).
		Pluck("likes.gif_id", &ids).Error
	return ids, total, err
}
