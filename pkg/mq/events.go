package mq

// LikeEvent 点赞事件
type LikeEvent struct {
	EventID    string `json:"event_id"`
	UserID     int64  `json:"user_id"`     // 点赞用户
	GifID      int64  `json:"gif_id"`      // 被点赞的 gif
	OwnerID    int64  `json:"owner_id"`    // gif 作者
	ActionType string `json:"action_type"` // "like" or "unlike"
	LikeCount  int64  `json:"like_count"`  // 操作后的点赞数
	Timestamp  int64  `json:"timestamp"`
}

// CommentEvent 评论事件
type CommentEvent struct {
	EventID         string `json:"event_id"`
	Type            string `json:"type"` // create, update, delete
	CommentID       int64  `json:"comment_id"`
	GifID           int64  `json:"gif_id"`
	UserID          int64  `json:"user_id"`
	GifOwnerID      int64  `json:"gif_owner_id"`
	ParentCommentID int64  `json:"parent_comment_id,omitempty"`
	ParentAuthorID  int64  `json:"parent_author_id,omitempty"`
	Content         string `json:"content,omitempty"`
	CommentCount    int64  `json:"comment_count"`
	Timestamp       int64  `json:"timestamp"`
}

// FollowEvent 关注事件
type FollowEvent struct {
	EventID     string `json:"event_id"`
	FollowerID  int64  `json:"follower_id"`
	FollowingID int64  `json:"following_id"`
	ActionType  string `json:"action_type"` // "follow" or "unfollow"
	Timestamp   int64  `json:"timestamp"`
}

// GifEvent gif 生命周期事件, 用于搜索索引和二创通知
type GifEvent struct {
	EventID     string `json:"event_id"`
	Type        string `json:"type"` // created, updated, deleted
	GifID       int64  `json:"gif_id"`
	UserID      int64  `json:"user_id"`
	ParentGifID int64  `json:"parent_gif_id,omitempty"`
	ParentOwner int64  `json:"parent_owner_id,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// NotificationEvent 直接生成一条通知
type NotificationEvent struct {
	EventID        string `json:"event_id"`
	RecipientID    int64  `json:"recipient_id"`
	ActorID        int64  `json:"actor_id"`
	Action         string `json:"action"`
	NotifiableType string `json:"notifiable_type"`
	NotifiableID   int64  `json:"notifiable_id"`
	Timestamp      int64  `json:"timestamp"`
}

const (
	GifEventCreated = "created"
	GifEventUpdated = "updated"
	GifEventDeleted = "deleted"

	CommentEventCreate = "create"
	CommentEventUpdate = "update"
	CommentEventDelete = "delete"
)

// 常量定义
const (
	// 交换机名称
	LikeEventExchange         = "like_events"
	CommentEventExchange      = "comment_events"
	FollowEventExchange       = "follow_events"
	GifEventExchange          = "gif_events"
	NotificationEventExchange = "notification_events"

	// 队列名称
	LikeEventQueue         = "like_event_queue"
	CommentEventQueue      = "comment_event_queue"
	FollowEventQueue       = "follow_event_queue"
	GifEventQueue          = "gif_event_queue"
	NotificationEventQueue = "notification_event_queue"
)

type binding struct {
	exchange string
	queue    string
}

var bindings = []binding{
	{LikeEventExchange, LikeEventQueue},
	{CommentEventExchange, CommentEventQueue},
	{FollowEventExchange, FollowEventQueue},
	{GifEventExchange, GifEventQueue},
	{NotificationEventExchange, NotificationEventQueue},
}
