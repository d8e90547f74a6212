package db

import (
	"context"

	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/database"
)

// CreateComment 插入评论, 同一事务中 gif.comment_count +1, 回复时父评论 reply_count +1
func CreateComment(ctx context.Context, c *model.Comment) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(c).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Gif{}).Where("id = ?", c.GifID).
			UpdateColumn("comment_count", database.Incr("comment_count", 1)).Error; err != nil {
			return err
		}
		if c.ParentCommentID == nil {
			return nil
		}
		return tx.Model(&model.Comment{}).Where("id = ?", *c.ParentCommentID).
			UpdateColumn("reply_count", database.Incr("reply_count", 1)).Error
	})
}

func GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := DB.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func UpdateComment(ctx context.Context, id int64, content string) error {
	return DB.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).
		Update("content", content).Error
}

// DeleteComment 软删除评论. 顶层评论的回复一并删除, gif.comment_count 按实际删除条数回退.
// 返回删除的条数
func DeleteComment(ctx context.Context, c *model.Comment) (int64, error) {
	var removed int64
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Comment{}, c.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		removed = 1
		if c.ParentCommentID == nil {
			replies := tx.Where("parent_comment_id = ?", c.ID).Delete(&model.Comment{})
			if replies.Error != nil {
				return replies.Error
			}
			removed += replies.RowsAffected
		} else if err := tx.Model(&model.Comment{}).Where("id = ?", *c.ParentCommentID).
			UpdateColumn("reply_count", database.Decr("reply_count", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&model.Gif{}).Where("id = ?", c.GifID).
			UpdateColumn("comment_count", database.Decr("comment_count", removed)).Error
	})
	return removed, err
}

// ListComments gif 的顶层评论, 最新的在前
func ListComments(ctx context.Context, gifID int64, offset, limit int) ([]*model.Comment, int64, error) {
	q := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("gif_id = ? AND parent_comment_id IS NULL", gifID).
		Session(&gorm.Session{})
	return page(q, "created_at DESC, id DESC", offset, limit)
}

// ListReplies 评论的回复, 按时间正序
func ListReplies(ctx context.Context, parentID int64, offset, limit int) ([]*model.Comment, int64, error) {
	q := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_comment_id = ?", parentID).
		Session(&gorm.Session{})
	return page(q, "created_at ASC, id ASC", offset, limit)
}

func page(q *gorm.DB, order string, offset, limit int) ([]*model.Comment, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*model.Comment, 0, limit)
	err := q.Preload("User").Order(order).Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func CommentCount(ctx context.Context, gifID int64) (int64, error) {
	var counts []int64
	if err := DB.WithContext(ctx).Unscoped().Model(&model.Gif{}).Where("id = ?", gifID).
		Pluck("comment_count", &counts).Error; err != nil || len(counts) == 0 {
		return 0, err
	}
	return counts[0], nil
}
