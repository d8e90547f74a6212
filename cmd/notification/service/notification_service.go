package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/model"
	"ytgify.com/cmd/notification/dal/db"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/realtime"
	"ytgify.com/pkg/utils"
)

type NotificationService struct {
	ctx context.Context
}

func NewNotificationService(ctx context.Context) *NotificationService {
	return &NotificationService{ctx: ctx}
}

type unreadPayload struct {
	UnreadCount int64 `json:"unread_count"`
}

// CreateFromEvent 持久化通知并实时推送给接收者. 自己对自己的操作不产生通知,
// 重复的事件返回 false
func (s *NotificationService) CreateFromEvent(event *mq.NotificationEvent) (bool, error) {
	if event.RecipientID == 0 || event.RecipientID == event.ActorID {
		return false, nil
	}
	eventID := event.EventID
	if eventID == "" {
		// 唯一索引, 没有事件ID时不做去重
		eventID = uuid.NewString()
	}
	n := &model.Notification{
		EventID:        eventID,
		RecipientID:    event.RecipientID,
		ActorID:        event.ActorID,
		Action:         event.Action,
		NotifiableType: event.NotifiableType,
		NotifiableID:   event.NotifiableID,
	}
	if event.Timestamp > 0 {
		n.CreatedAt = time.Unix(event.Timestamp, 0)
	}
	created, err := db.CreateNotification(s.ctx, n)
	if err != nil {
		return false, errors.WithMessage(err, "dao.CreateNotification failed")
	}
	if !created {
		hlog.CtxInfof(s.ctx, "notification for event %s already exists", event.EventID)
		return false, nil
	}

	stream := realtime.NotificationStream(n.RecipientID)
	if full, err := db.GetNotification(s.ctx, n.ID); err == nil {
		realtime.BroadcastSafe(s.ctx, stream, realtime.TypeNotification, full)
	}
	s.pushUnread(n.RecipientID)
	return true, nil
}

func (s *NotificationService) pushUnread(userID int64) {
	count, err := db.UnreadCount(s.ctx, userID)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "count unread notifications of user %d failed: %v", userID, err)
		return
	}
	realtime.BroadcastSafe(s.ctx, realtime.NotificationStream(userID), realtime.TypeUnreadCount, unreadPayload{UnreadCount: count})
}

func (s *NotificationService) List(userID int64, unreadOnly bool, page, perPage int) (*model.PageResult[*model.Notification], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := db.ListNotifications(s.ctx, userID, unreadOnly, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListNotifications failed")
	}
	return model.NewPage(list, page, perPage, total), nil
}

func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	count, err := db.UnreadCount(s.ctx, userID)
	if err != nil {
		return 0, errors.WithMessage(err, "dao.UnreadCount failed")
	}
	return count, nil
}

// MarkRead 只能标记自己的通知, 重复标记不报错
func (s *NotificationService) MarkRead(userID, id int64) (*model.Notification, error) {
	n, err := db.GetNotification(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && n.RecipientID != userID) {
		return nil, errno.NotFoundErr.WithMessage("Notification not found")
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetNotification failed")
	}
	if n.ReadAt == nil {
		now := time.Now()
		if err := db.MarkRead(s.ctx, userID, id, now); err != nil {
			return nil, errors.WithMessage(err, "dao.MarkRead failed")
		}
		n.ReadAt = &now
		s.pushUnread(userID)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(userID int64) (int64, error) {
	n, err := db.MarkAllRead(s.ctx, userID, time.Now())
	if err != nil {
		return 0, errors.WithMessage(err, "dao.MarkAllRead failed")
	}
	if n > 0 {
		s.pushUnread(userID)
	}
	return n, nil
}
