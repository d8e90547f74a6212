package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	gifservice "ytgify.com/cmd/gif/service"
	"ytgify.com/cmd/interaction/dal/db"
	notification "ytgify.com/cmd/notification/service"
	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/realtime"
	"ytgify.com/pkg/search"
)

const processedTTL = 24 * time.Hour

// EventHandler 把领域事件转换为实时推送, 通知和搜索索引
type EventHandler struct {
	rdb     *redis.Client
	indexer *gifservice.Indexer
}

func NewEventHandler(rdb *redis.Client, engine search.Engine) *EventHandler {
	return &EventHandler{rdb: rdb, indexer: gifservice.NewIndexer(engine)}
}

var (
	_ mq.LikeEventHandler         = (*EventHandler)(nil)
	_ mq.CommentEventHandler      = (*EventHandler)(nil)
	_ mq.FollowEventHandler       = (*EventHandler)(nil)
	_ mq.GifEventHandler          = (*EventHandler)(nil)
	_ mq.NotificationEventHandler = (*EventHandler)(nil)
)

// once 重复投递的事件只处理一次, 处理成功后才记录
func (h *EventHandler) once(ctx context.Context, eventID string, fn func() error) error {
	if h.rdb == nil || eventID == "" {
		return fn()
	}
	key := cache.Key(cache.ProcessedEventKey, eventID)
	if n, err := h.rdb.Exists(ctx, key).Result(); err == nil && n > 0 {
		hlog.CtxInfof(ctx, "event %s already processed, skipping", eventID)
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	if err := h.rdb.Set(ctx, key, 1, processedTTL).Err(); err != nil {
		hlog.CtxWarnf(ctx, "mark event %s processed failed: %v", eventID, err)
	}
	return nil
}

// pairEventID 点赞和关注的通知按 (动作, 发起人, 对象) 去重, 反复取消再点赞也只通知一次
func pairEventID(action string, actorID, targetID int64) string {
	return fmt.Sprintf("%s:%d:%d", action, actorID, targetID)
}

func (h *EventHandler) notify(ctx context.Context, e *mq.NotificationEvent) error {
	_, err := notification.NewNotificationService(ctx).CreateFromEvent(e)
	return err
}

type likePayload struct {
	GifID     int64 `json:"gif_id"`
	LikeCount int64 `json:"like_count"`
}

func (h *EventHandler) HandleLikeEvent(ctx context.Context, e *mq.LikeEvent) error {
	return h.once(ctx, e.EventID, func() error {
		realtime.BroadcastSafe(ctx, realtime.GifStream(e.GifID), realtime.TypeLikeUpdated,
			likePayload{GifID: e.GifID, LikeCount: e.LikeCount})
		if e.ActionType != "like" {
			return nil
		}
		return h.notify(ctx, &mq.NotificationEvent{
			EventID:        pairEventID(constants.NotificationLike, e.UserID, e.GifID),
			RecipientID:    e.OwnerID,
			ActorID:        e.UserID,
			Action:         constants.NotificationLike,
			NotifiableType: "Gif",
			NotifiableID:   e.GifID,
			Timestamp:      e.Timestamp,
		})
	})
}

type commentPayload struct {
	GifID        int64       `json:"gif_id"`
	CommentID    int64       `json:"comment_id"`
	CommentCount int64       `json:"comment_count"`
	Comment      interface{} `json:"comment,omitempty"`
}

func (h *EventHandler) HandleCommentEvent(ctx context.Context, e *mq.CommentEvent) error {
	return h.once(ctx, e.EventID, func() error {
		payload := commentPayload{GifID: e.GifID, CommentID: e.CommentID, CommentCount: e.CommentCount}
		stream := realtime.GifStream(e.GifID)
		switch e.Type {
		case mq.CommentEventDelete:
			realtime.BroadcastSafe(ctx, stream, realtime.TypeCommentDeleted, payload)
			return nil
		case mq.CommentEventUpdate:
			if c, err := db.GetComment(ctx, e.CommentID); err == nil {
				payload.Comment = c
			}
			realtime.BroadcastSafe(ctx, stream, realtime.TypeCommentUpdated, payload)
			return nil
		}

		if c, err := db.GetComment(ctx, e.CommentID); err == nil {
			payload.Comment = c
		}
		realtime.BroadcastSafe(ctx, stream, realtime.TypeCommentCreated, payload)

		if e.ParentAuthorID != 0 {
			if err := h.notify(ctx, &mq.NotificationEvent{
				EventID:        e.EventID + ":reply",
				RecipientID:    e.ParentAuthorID,
				ActorID:        e.UserID,
				Action:         constants.NotificationReply,
				NotifiableType: "Comment",
				NotifiableID:   e.CommentID,
				Timestamp:      e.Timestamp,
			}); err != nil {
				return err
			}
		}
		// 回复 gif 作者自己的评论时, 作者只收到一条回复通知
		if e.GifOwnerID == e.ParentAuthorID {
			return nil
		}
		return h.notify(ctx, &mq.NotificationEvent{
			EventID:        e.EventID + ":comment",
			RecipientID:    e.GifOwnerID,
			ActorID:        e.UserID,
			Action:         constants.NotificationComment,
			NotifiableType: "Comment",
			NotifiableID:   e.CommentID,
			Timestamp:      e.Timestamp,
		})
	})
}

func (h *EventHandler) HandleFollowEvent(ctx context.Context, e *mq.FollowEvent) error {
	if e.ActionType != "follow" {
		return nil
	}
	return h.notify(ctx, &mq.NotificationEvent{
		EventID:        pairEventID(constants.NotificationFollow, e.FollowerID, e.FollowingID),
		RecipientID:    e.FollowingID,
		ActorID:        e.FollowerID,
		Action:         constants.NotificationFollow,
		NotifiableType: "User",
		NotifiableID:   e.FollowerID,
		Timestamp:      e.Timestamp,
	})
}

func (h *EventHandler) HandleGifEvent(ctx context.Context, e *mq.GifEvent) error {
	if err := h.indexer.HandleGifEvent(ctx, e); err != nil {
		return err
	}
	if e.Type != mq.GifEventCreated || e.ParentGifID == 0 {
		return nil
	}
	return h.notify(ctx, &mq.NotificationEvent{
		EventID:        e.EventID,
		RecipientID:    e.ParentOwner,
		ActorID:        e.UserID,
		Action:         constants.NotificationRemix,
		NotifiableType: "Gif",
		NotifiableID:   e.GifID,
		Timestamp:      e.Timestamp,
	})
}

func (h *EventHandler) HandleNotificationEvent(ctx context.Context, e *mq.NotificationEvent) error {
	return h.notify(ctx, e)
}
