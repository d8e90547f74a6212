package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/database"
)

// TrendingHashtag 窗口内的话题及其公开 gif 数
type TrendingHashtag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UsageCount int64  `json:"usage_count"`
	GifCount   int64  `json:"gif_count"`
}

// Sync 把 gif 的话题替换为 names, 在调用方事务 tx 中执行.
// 新增的话题 usage_count +1, 移除的 -1
func Sync(tx *gorm.DB, gifID int64, names []string) error {
	var current []int64
	if err := tx.Model(&model.GifHashtag{}).Where("gif_id = ?", gifID).
		Pluck("hashtag_id", &current).Error; err != nil {
		return err
	}
	keep := make(map[int64]bool, len(current))
	for _, id := range current {
		keep[id] = false
	}

	var added []int64
	for _, name := range names {
		h, err := upsert(tx, name)
		if err != nil {
			return err
		}
		if _, ok := keep[h.ID]; ok {
			keep[h.ID] = true
			continue
		}
		added = append(added, h.ID)
		keep[h.ID] = true
	}

	var removed []int64
	for _, id := range current {
		if !keep[id] {
			removed = append(removed, id)
		}
	}
	if err := detach(tx, gifID, removed); err != nil {
		return err
	}
	for _, id := range added {
		if _, err := database.InsertIgnore(tx, &model.GifHashtag{GifID: gifID, HashtagID: id}); err != nil {
			return err
		}
	}
	if len(added) > 0 {
		return tx.Model(&model.Hashtag{}).Where("id IN ?", added).
			UpdateColumn("usage_count", database.Incr("usage_count", 1)).Error
	}
	return nil
}

// Detach 解除 gif 的全部话题, 用于删除 gif
func Detach(tx *gorm.DB, gifID int64) error {
	var current []int64
	if err := tx.Model(&model.GifHashtag{}).Where("gif_id = ?", gifID).
		Pluck("hashtag_id", &current).Error; err != nil {
		return err
	}
	return detach(tx, gifID, current)
}

func detach(tx *gorm.DB, gifID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("gif_id = ? AND hashtag_id IN ?", gifID, ids).Delete(&model.GifHashtag{}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Hashtag{}).Where("id IN ?", ids).
		UpdateColumn("usage_count", database.Decr("usage_count", 1)).Error
}

func upsert(tx *gorm.DB, name string) (*model.Hashtag, error) {
	if _, err := database.InsertIgnore(tx, &model.Hashtag{Name: name}); err != nil {
		return nil, err
	}
	var h model.Hashtag
	if err := tx.Where("name = ?", name).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func GetByName(ctx context.Context, name string) (*model.Hashtag, error) {
	var h model.Hashtag
	if err := DB.WithContext(ctx).Where("name = ?", name).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// Trending since 之后创建的公开 gif 中出现最多的话题
func Trending(ctx context.Context, since time.Time, limit int) ([]*TrendingHashtag, error) {
	list := make([]*TrendingHashtag, 0, limit)
	err := DB.WithContext(ctx).Table("hashtags").
		Select("hashtags.id, hashtags.name, hashtags.usage_count, COUNT(gifs.id) AS gif_count").
		Joins("JOIN gif_hashtags ON gif_hashtags.hashtag_id = hashtags.id").
		Joins("JOIN gifs ON gifs.id = gif_hashtags.gif_id").
		Where("gifs.privacy = ? AND gifs.deleted_at IS NULL AND gifs.created_at >= ?", constants.PrivacyPublic, since).
		Group("hashtags.id, hashtags.name, hashtags.usage_count").
		Order("gif_count DESC, hashtags.usage_count DESC, hashtags.name ASC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}

// GifIDsByHashtag 带该话题的公开 gif, 最新的在前
func GifIDsByHashtag(ctx context.Context, hashtagID int64, offset, limit int) ([]int64, int64, error) {
	q := DB.WithContext(ctx).Table("gifs").
		Joins("JOIN gif_hashtags ON gif_hashtags.gif_id = gifs.id").
		Where("gif_hashtags.hashtag_id = ? AND gifs.privacy = ? AND gifs.deleted_at IS NULL", hashtagID, constants.PrivacyPublic).
		Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, limit)
	err := q.Order("gifs.created_at DESC, gifs.id DESC").Offset(offset).Limit(limit).Pluck("gifs.id", &ids).Error
	return ids, total, err
}

// SearchPrefix 话题名前缀补全, 按使用次数排序
func SearchPrefix(ctx context.Context, prefix string, limit int) ([]*model.Hashtag, error) {
	list := make([]*model.Hashtag, 0, limit)
	pattern := database.EscapeLike(prefix) + "%"
	err := DB.WithContext(ctx).Where("name LIKE ? ESCAPE '!' AND usage_count > 0", pattern).
		Order("usage_count DESC, name ASC").Limit(limit).Find(&list).Error
	return list, err
}
