package db

import (
	"context"

	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/database"
)

// CreateCollection 同一用户下重名时返回 false
func CreateCollection(ctx context.Context, c *model.Collection) (bool, error) {
	return database.InsertIgnore(DB.WithContext(ctx), c)
}

func GetCollection(ctx context.Context, id int64) (*model.Collection, error) {
	var c model.Collection
	if err := DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// NameTaken userID 是否已有同名收藏夹, exceptID 为正在修改的收藏夹
func NameTaken(ctx context.Context, userID int64, name string, exceptID int64) (bool, error) {
	var n int64
	err := DB.WithContext(ctx).Model(&model.Collection{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, exceptID).Count(&n).Error
	return n > 0, err
}

// ListByUser includePrivate 为 false 时只列出公开收藏夹
func ListByUser(ctx context.Context, userID int64, includePrivate bool, offset, limit int) ([]*model.Collection, int64, error) {
	q := DB.WithContext(ctx).Model(&model.Collection{}).Where("user_id = ?", userID)
	if !includePrivate {
		q = q.Where("is_public = ?", true)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*model.Collection, 0, limit)
	err := q.Order("updated_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func UpdateCollection(ctx context.Context, id int64, updates map[string]interface{}) error {
	return DB.WithContext(ctx).Model(&model.Collection{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteCollection 同时删除收藏的条目
func DeleteCollection(ctx context.Context, id int64) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&model.CollectionGif{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Collection{}, id).Error
	})
}

// AddGif 追加到末尾, 已收藏时返回 false
func AddGif(ctx context.Context, collectionID, gifID int64) (bool, error) {
	added := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int64
		if err := tx.Model(&model.CollectionGif{}).Where("collection_id = ?", collectionID).
			Select("COALESCE(MAX(position), 0)").Row().Scan(&maxPos); err != nil {
			return err
		}
		next := maxPos + 1
		ok, err := database.InsertIgnore(tx, &model.CollectionGif{CollectionID: collectionID, GifID: gifID, Position: next})
		if err != nil || !ok {
			return err
		}
		added = true
		return tx.Model(&model.Collection{}).Where("id = ?", collectionID).
			Updates(map[string]interface{}{"gifs_count": database.Incr("gifs_count", 1)}).Error
	})
	return added, err
}

// RemoveGif 不在收藏夹中时返回 false
func RemoveGif(ctx context.Context, collectionID, gifID int64) (bool, error) {
	removed := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection_id = ? AND gif_id = ?", collectionID, gifID).Delete(&model.CollectionGif{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		removed = true
		return tx.Model(&model.Collection{}).Where("id = ?", collectionID).
			Updates(map[string]interface{}{"gifs_count": database.Decr("gifs_count", 1)}).Error
	})
	return removed, err
}

// GifIDs 按位置排序, 只包含 viewerID 可以在列表中看到的 gif
func GifIDs(ctx context.Context, collectionID, viewerID int64, offset, limit int) ([]int64, int64, error) {
	q := DB.WithContext(ctx).Table("collection_gifs").
		Joins("JOIN gifs ON gifs.id = collection_gifs.gif_id").
		Where("collection_gifs.collection_id = ? AND gifs.deleted_at IS NULL", collectionID).
		Where("(gifs.privacy = ? OR gifs.user_id = ?)", constants.PrivacyPublic, viewerID).
		Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, limit)
	err := q.Order("collection_gifs.position ASC, collection_gifs.id ASC").Offset(offset).Limit(limit).
		Pluck("collection_gifs.gif_id", &ids).Error
	return ids, total, err
}
