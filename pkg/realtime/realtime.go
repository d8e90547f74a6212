package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "ytgify:stream:"

// 消息类型
const (
	TypeLikeUpdated    = "like_updated"
	TypeCommentCreated = "comment_created"
	TypeCommentUpdated = "comment_updated"
	TypeCommentDeleted = "comment_deleted"
	TypeNotification   = "notification"
	TypeUnreadCount    = "unread_count"
)

// Message is what websocket subscribers receive.
type Message struct {
	Stream  string          `json:"stream"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sent_at"`
}

// Publisher sends a message to every subscriber of a stream on every api instance.
type Publisher interface {
	Broadcast(ctx context.Context, stream, typ string, payload interface{}) error
}

// Default 未配置 redis 时丢弃所有消息
var Default Publisher = nopPublisher{}

type nopPublisher struct{}

func (nopPublisher) Broadcast(context.Context, string, string, interface{}) error { return nil }

type RedisPublisher struct {
	rdb redis.UniversalClient
}

func NewRedisPublisher(rdb redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Broadcast(ctx context.Context, stream, typ string, payload interface{}) error {
	body, err := Encode(stream, typ, payload)
	if err != nil {
		return err
	}
	if err = p.rdb.Publish(ctx, channelPrefix+stream, body).Err(); err != nil {
		return errors.WithMessagef(err, "publish to stream %s", stream)
	}
	return nil
}

func Encode(stream, typ string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithMessage(err, "marshal payload")
	}
	return json.Marshal(&Message{Stream: stream, Type: typ, Payload: raw, SentAt: time.Now().UnixMilli()})
}

func GifStream(gifID int64) string {
	return fmt.Sprintf("gif:%d", gifID)
}

func NotificationStream(userID int64) string {
	return fmt.Sprintf("user:%d:notifications", userID)
}

// Authorize 校验 userID 能否订阅 stream. gif 流公开, 通知流只允许本人
func Authorize(stream string, userID int64) error {
	parts := strings.Split(stream, ":")
	switch {
	case len(parts) == 2 && parts[0] == "gif":
		if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
			return fmt.Errorf("invalid stream %q", stream)
		}
		return nil
	case len(parts) == 3 && parts[0] == "user" && parts[2] == "notifications":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid stream %q", stream)
		}
		if userID == 0 || id != userID {
			return errors.New("stream belongs to another user")
		}
		return nil
	}
	return fmt.Errorf("unknown stream %q", stream)
}

// BroadcastSafe 推送失败只记录日志, 不影响主流程
func BroadcastSafe(ctx context.Context, stream, typ string, payload interface{}) {
	if err := Default.Broadcast(ctx, stream, typ, payload); err != nil {
		hlog.CtxWarnf(ctx, "broadcast %s to %s failed: %v", typ, stream, err)
	}
}

// Recorder keeps broadcasts in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

func (r *Recorder) Broadcast(_ context.Context, stream, typ string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Stream: stream, Type: typ, Payload: raw})
	return nil
}

// Types returns the message types sent to stream, in order.
func (r *Recorder) Types(stream string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.Messages {
		if m.Stream == stream {
			out = append(out, m.Type)
		}
	}
	return out
}
