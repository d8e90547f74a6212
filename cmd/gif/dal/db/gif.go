package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/database"
)

const (
	OrderRecent   = "recent"
	OrderPopular  = "popular"
	OrderTrending = "trending"
)

// Filter gif 列表查询条件. ViewerID 为 0 时只返回公开 gif,
// 否则额外包含 ViewerID 自己的非公开 gif
type Filter struct {
	UserID         int64
	UserIDs        []int64
	ParentID       int64
	ViewerID       int64
	Since          time.Time
	ExcludeUserIDs []int64
	Query          string
	OrderBy        string
}

// CreateGif 插入 gif, 同一事务中更新作者 gifs_count, 父 gif 的 remix_count 和话题
func CreateGif(ctx context.Context, g *model.Gif, tags []string) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Hashtags").Create(g).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", g.UserID).
			UpdateColumn("gifs_count", database.Incr("gifs_count", 1)).Error; err != nil {
			return err
		}
		if g.ParentGifID != nil {
			if err := tx.Model(&model.Gif{}).Where("id = ?", *g.ParentGifID).
				UpdateColumn("remix_count", database.Incr("remix_count", 1)).Error; err != nil {
				return err
			}
		}
		return hashtagdb.Sync(tx, g.ID, tags)
	})
}

func GetGif(ctx context.Context, id int64) (*model.Gif, error) {
	var g model.Gif
	if err := DB.WithContext(ctx).Preload("User").Preload("Hashtags").First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// MGetGifs 按 ids 的顺序返回仍存在的 gif
func MGetGifs(ctx context.Context, ids []int64) ([]*model.Gif, error) {
	if len(ids) == 0 {
		return []*model.Gif{}, nil
	}
	var list []*model.Gif
	if err := DB.WithContext(ctx).Preload("User").Preload("Hashtags").
		Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Gif, len(list))
	for _, g := range list {
		byID[g.ID] = g
	}
	res := make([]*model.Gif, 0, len(list))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			res = append(res, g)
		}
	}
	return res, nil
}

// UpdateGif 更新字段, tags 不为 nil 时同时重建话题
func UpdateGif(ctx context.Context, id int64, updates map[string]interface{}, tags []string) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&model.Gif{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if tags == nil {
			return nil
		}
		return hashtagdb.Sync(tx, id, tags)
	})
}

// DeleteGif 软删除, 回退作者和父 gif 的计数, 移出所有收藏夹并解除话题
func DeleteGif(ctx context.Context, g *model.Gif) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var likes []int64
		if err := tx.Model(&model.Gif{}).Where("id = ?", g.ID).Pluck("like_count", &likes).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Gif{}, g.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		userUpdates := map[string]interface{}{"gifs_count": database.Decr("gifs_count", 1)}
		if len(likes) > 0 && likes[0] > 0 {
			userUpdates["total_likes_received"] = database.Decr("total_likes_received", likes[0])
		}
		if err := tx.Model(&model.User{}).Where("id = ?", g.UserID).
			UpdateColumns(userUpdates).Error; err != nil {
			return err
		}
		if err := detachFromCollections(tx, g.ID); err != nil {
			return err
		}
		if g.ParentGifID != nil {
			if err := tx.Model(&model.Gif{}).Where("id = ?", *g.ParentGifID).
				UpdateColumn("remix_count", database.Decr("remix_count", 1)).Error; err != nil {
				return err
			}
		}
		return hashtagdb.Detach(tx, g.ID)
	})
}

// detachFromCollections 删除收藏条目并回退对应收藏夹的 gifs_count
func detachFromCollections(tx *gorm.DB, gifID int64) error {
	var collectionIDs []int64
	if err := tx.Model(&model.CollectionGif{}).Where("gif_id = ?", gifID).
		Pluck("collection_id", &collectionIDs).Error; err != nil {
		return err
	}
	if len(collectionIDs) == 0 {
		return nil
	}
	if err := tx.Where("gif_id = ?", gifID).Delete(&model.CollectionGif{}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Collection{}).Where("id IN ?", collectionIDs).
		UpdateColumn("gifs_count", database.Decr("gifs_count", 1)).Error
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	q = q.Model(&model.Gif{})
	if f.ViewerID != 0 {
		q = q.Where("(privacy = ? OR user_id = ?)", constants.PrivacyPublic, f.ViewerID)
	} else {
		q = q.Where("privacy = ?", constants.PrivacyPublic)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.UserIDs != nil {
		if len(f.UserIDs) == 0 {
			return q.Where("1 = 0")
		}
		q = q.Where("user_id IN ?", f.UserIDs)
	}
	if f.ParentID != 0 {
		q = q.Where("parent_gif_id = ?", f.ParentID)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if len(f.ExcludeUserIDs) > 0 {
		q = q.Where("user_id NOT IN ?", f.ExcludeUserIDs)
	}
	if f.Query != "" {
		like := "%" + database.EscapeLike(f.Query) + "%"
		q = q.Where("(title LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!')", like, like)
	}
	return q
}

func order(by string) string {
	switch by {
	case OrderPopular:
		return "like_count DESC, created_at DESC, id DESC"
	case OrderTrending:
		return "trending_score DESC, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// ListGifs 分页列出满足 f 的 gif 以及总数
func ListGifs(ctx context.Context, f Filter, offset, limit int) ([]*model.Gif, int64, error) {
	var total int64
	if err := f.apply(DB.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*model.Gif, 0, limit)
	if total == 0 {
		return list, 0, nil
	}
	err := f.apply(DB.WithContext(ctx)).Preload("User").Preload("Hashtags").
		Order(order(f.OrderBy)).Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

// CountGifs 满足 f 的 gif 数
func CountGifs(ctx context.Context, f Filter) (int64, error) {
	var total int64
	err := f.apply(DB.WithContext(ctx)).Count(&total).Error
	return total, err
}

// PublicIDs 按原顺序返回 ids 中仍存在且公开的 gif
func PublicIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var found []int64
	if err := DB.WithContext(ctx).Model(&model.Gif{}).
		Where("id IN ? AND privacy = ?", ids, constants.PrivacyPublic).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	live := make(map[int64]bool, len(found))
	for _, id := range found {
		live[id] = true
	}
	res := make([]int64, 0, len(found))
	for _, id := range ids {
		if live[id] {
			res = append(res, id)
		}
	}
	return res, nil
}

// IncrShare share_count +1 并返回新值
func IncrShare(ctx context.Context, id int64) (int64, error) {
	res := DB.WithContext(ctx).Model(&model.Gif{}).Where("id = ?", id).
		UpdateColumn("share_count", database.Incr("share_count", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var counts []int64
	if err := DB.WithContext(ctx).Model(&model.Gif{}).Where("id = ?", id).
		Pluck("share_count", &counts).Error; err != nil || len(counts) == 0 {
		return 0, err
	}
	return counts[0], nil
}

// AddViewCounts 把缓冲的浏览数累加到 view_count
func AddViewCounts(ctx context.Context, counts map[int64]int64) error {
	if len(counts) == 0 {
		return nil
	}
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, n := range counts {
			if n <= 0 {
				continue
			}
			if err := tx.Unscoped().Model(&model.Gif{}).Where("id = ?", id).
				UpdateColumn("view_count", database.Incr("view_count", n)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TrendingCandidates since 之后创建的公开 gif, 只取计算热度需要的列
func TrendingCandidates(ctx context.Context, since time.Time) ([]*model.Gif, error) {
	var list []*model.Gif
	err := DB.WithContext(ctx).
		Select("id, user_id, like_count, comment_count, remix_count, share_count, view_count, created_at").
		Where("privacy = ? AND created_at >= ?", constants.PrivacyPublic, since).
		Find(&list).Error
	return list, err
}

// UpdateTrendingScores 写入新的热度分, 窗口外的 gif 清零
func UpdateTrendingScores(ctx context.Context, scores map[int64]float64, since time.Time) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, score := range scores {
			if err := tx.Model(&model.Gif{}).Where("id = ?", id).
				UpdateColumn("trending_score", score).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Gif{}).
			Where("trending_score > 0 AND (created_at < ? OR privacy <> ?)", since, constants.PrivacyPublic).
			UpdateColumn("trending_score", 0).Error
	})
}
