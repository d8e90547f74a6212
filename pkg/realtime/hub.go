package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/metrics"
)

const clientBuffer = 64

// Client is one websocket connection. Send is drained by the connection's
// write loop and closed by the hub when the client is removed.
type Client struct {
	UserID int64
	Send   chan []byte

	streams map[string]struct{}
}

func NewClient(userID int64) *Client {
	return &Client{
		UserID:  userID,
		Send:    make(chan []byte, clientBuffer),
		streams: make(map[string]struct{}),
	}
}

// Hub fans messages received from redis out to the local subscribers of a stream.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		streams: make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// Unregister drops c from every stream and closes its Send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	for s := range c.streams {
		if subs := h.streams[s]; subs != nil {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.streams, s)
			}
		}
	}
	delete(h.clients, c)
	close(c.Send)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) Subscribe(c *Client, stream string) error {
	if err := Authorize(stream, c.UserID); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	subs := h.streams[stream]
	if subs == nil {
		subs = make(map[*Client]struct{})
		h.streams[stream] = subs
	}
	subs[c] = struct{}{}
	c.streams[stream] = struct{}{}
	return nil
}

func (h *Hub) Unsubscribe(c *Client, stream string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.streams, stream)
	if subs := h.streams[stream]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.streams, stream)
		}
	}
}

// Deliver hands msg to every subscriber of stream. A subscriber whose buffer
// is full is disconnected rather than allowed to stall the others.
func (h *Hub) Deliver(stream string, msg []byte) int {
	h.mu.RLock()
	var slow []*Client
	delivered := 0
	for c := range h.streams[stream] {
		select {
		case c.Send <- msg:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			hlog.Warnf("websocket client of user %d too slow, disconnecting", c.UserID)
			h.removeLocked(c)
		}
		h.mu.Unlock()
	}
	return delivered
}

// Run pattern-subscribes to every stream channel and delivers until ctx ends.
func (h *Hub) Run(ctx context.Context, rdb redis.UniversalClient) error {
	ps := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			h.Deliver(strings.TrimPrefix(m.Channel, channelPrefix), []byte(m.Payload))
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
