package mq

import (
	"context"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"ytgify.com/pkg/metrics"
)

// MessageProducer 消息生产者接口
type MessageProducer interface {
	PublishLikeEvent(ctx context.Context, event *LikeEvent) error
	PublishCommentEvent(ctx context.Context, event *CommentEvent) error
	PublishFollowEvent(ctx context.Context, event *FollowEvent) error
	PublishGifEvent(ctx context.Context, event *GifEvent) error
	PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error
}

// 确保Producer实现MessageProducer接口
var _ MessageProducer = (*Producer)(nil)
var _ MessageProducer = NopProducer{}
var _ MessageProducer = (*RecordingProducer)(nil)

// NopProducer drops every event. Used when RabbitMQ is not configured.
type NopProducer struct{}

func (NopProducer) PublishLikeEvent(context.Context, *LikeEvent) error       { return nil }
func (NopProducer) PublishCommentEvent(context.Context, *CommentEvent) error { return nil }
func (NopProducer) PublishFollowEvent(context.Context, *FollowEvent) error   { return nil }
func (NopProducer) PublishGifEvent(context.Context, *GifEvent) error         { return nil }
func (NopProducer) PublishNotificationEvent(context.Context, *NotificationEvent) error {
	return nil
}

// RecordingProducer keeps published events in memory.
type RecordingProducer struct {
	mu            sync.Mutex
	Likes         []*LikeEvent
	Comments      []*CommentEvent
	Follows       []*FollowEvent
	Gifs          []*GifEvent
	Notifications []*NotificationEvent
}

func (r *RecordingProducer) PublishLikeEvent(_ context.Context, e *LikeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Likes = append(r.Likes, e)
	return nil
}

func (r *RecordingProducer) PublishCommentEvent(_ context.Context, e *CommentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Comments = append(r.Comments, e)
	return nil
}

func (r *RecordingProducer) PublishFollowEvent(_ context.Context, e *FollowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Follows = append(r.Follows, e)
	return nil
}

func (r *RecordingProducer) PublishGifEvent(_ context.Context, e *GifEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gifs = append(r.Gifs, e)
	return nil
}

func (r *RecordingProducer) PublishNotificationEvent(_ context.Context, e *NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, e)
	return nil
}

// Report 记录一次发布结果. 事件在数据库提交之后发布, 失败只记日志, 不回滚业务
func Report(ctx context.Context, exchange string, err error) {
	metrics.EventsPublishedTotal.WithLabelValues(exchange, metrics.Result(err)).Inc()
	if err != nil {
		hlog.CtxErrorf(ctx, "publish to %s failed: %v", exchange, err)
	}
}
