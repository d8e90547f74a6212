package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/database"
)

// CreateNotification 按 EventID 去重, 重复投递的事件不会产生第二条通知
func CreateNotification(ctx context.Context, n *model.Notification) (bool, error) {
	return database.InsertIgnore(DB.WithContext(ctx).Omit("Actor"), n)
}

func GetNotification(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	if err := DB.WithContext(ctx).Preload("Actor").First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications 最新的在前
func ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, offset, limit int) ([]*model.Notification, int64, error) {
	q := DB.WithContext(ctx).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*model.Notification, 0, limit)
	err := q.Preload("Actor").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).Count(&n).Error
	return n, err
}

// MarkRead 已读过的不更新 read_at
func MarkRead(ctx context.Context, recipientID, id int64, at time.Time) error {
	return DB.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientID).
		UpdateColumn("read_at", at).Error
}

// MarkAllRead 返回本次标记的条数
func MarkAllRead(ctx context.Context, recipientID int64, at time.Time) (int64, error) {
	res := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		UpdateColumn("read_at", at)
	return res.RowsAffected, res.Error
}
