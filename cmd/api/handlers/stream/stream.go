package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/websocket"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hub 本实例的订阅关系, main 中启动 Run
var Hub = realtime.NewHub()

var upgrader = websocket.HertzUpgrader{
	CheckOrigin: func(ctx *app.RequestContext) bool {
		return true // 扩展和网页都会连接, 鉴权靠 token
	},
}

// Command 客户端发来的订阅指令
type Command struct {
	Action string `json:"action"`
	Stream string `json:"stream"`
}

type reply struct {
	Type   string `json:"type"`
	Stream string `json:"stream,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler 升级为 websocket, query 中的 stream 作为初始订阅
func Handler(ctx context.Context, c *app.RequestContext) {
	uid := handlers.UserID(c)
	initial := c.Query("stream")
	if initial != "" {
		if err := realtime.Authorize(initial, uid); err != nil {
			handlers.SendResponse(c, errno.ForbiddenErr.WithMessage(err.Error()), nil)
			return
		}
	}

	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		client := realtime.NewClient(uid)
		Hub.Register(client)
		defer Hub.Unregister(client)

		if initial != "" {
			if err := Hub.Subscribe(client, initial); err != nil {
				return
			}
			writeJSON(conn, reply{Type: "subscribed", Stream: initial})
		}

		done := make(chan struct{})
		go writeLoop(conn, client, done)
		readLoop(ctx, conn, client)
		close(done)
	})
	if err != nil {
		hlog.CtxWarnf(ctx, "websocket upgrade failed: %v", err)
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, client *realtime.Client) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hlog.CtxInfof(ctx, "websocket of user %d closed: %v", client.UserID, err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			enqueue(client, reply{Type: "error", Error: "invalid message"})
			continue
		}
		switch cmd.Action {
		case "subscribe":
			if err := Hub.Subscribe(client, cmd.Stream); err != nil {
				enqueue(client, reply{Type: "error", Stream: cmd.Stream, Error: err.Error()})
				continue
			}
			enqueue(client, reply{Type: "subscribed", Stream: cmd.Stream})
		case "unsubscribe":
			Hub.Unsubscribe(client, cmd.Stream)
			enqueue(client, reply{Type: "unsubscribed", Stream: cmd.Stream})
		default:
			enqueue(client, reply{Type: "error", Error: "unknown action"})
		}
	}
}

// writeLoop 是唯一写 conn 的协程 (initial 订阅回执除外, 它发生在启动之前)
func writeLoop(conn *websocket.Conn, client *realtime.Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub 断开了慢客户端
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(v)
}

// enqueue 回执和推送消息走同一个发送队列, 队列满时丢弃回执
func enqueue(client *realtime.Client, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	defer func() { _ = recover() }() // Send 可能已被 hub 关闭
	select {
	case client.Send <- b:
	default:
	}
}
