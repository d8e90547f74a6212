package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"

	"ytgify.com/pkg/constants"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

type LikeEventHandler interface {
	HandleLikeEvent(ctx context.Context, event *LikeEvent) error
}

type CommentEventHandler interface {
	HandleCommentEvent(ctx context.Context, event *CommentEvent) error
}

type FollowEventHandler interface {
	HandleFollowEvent(ctx context.Context, event *FollowEvent) error
}

type GifEventHandler interface {
	HandleGifEvent(ctx context.Context, event *GifEvent) error
}

type NotificationEventHandler interface {
	HandleNotificationEvent(ctx context.Context, event *NotificationEvent) error
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	err = ch.Qos(
		constants.ConsumerPrefetch, // prefetch count
		0,                          // prefetch size
		false,                      // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err = setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
	}, nil
}

func (c *Consumer) ConsumeLikeEvents(ctx context.Context, handler LikeEventHandler) error {
	return consume(ctx, c.channel, LikeEventQueue, handler.HandleLikeEvent)
}

func (c *Consumer) ConsumeCommentEvents(ctx context.Context, handler CommentEventHandler) error {
	return consume(ctx, c.channel, CommentEventQueue, handler.HandleCommentEvent)
}

func (c *Consumer) ConsumeFollowEvents(ctx context.Context, handler FollowEventHandler) error {
	return consume(ctx, c.channel, FollowEventQueue, handler.HandleFollowEvent)
}

func (c *Consumer) ConsumeGifEvents(ctx context.Context, handler GifEventHandler) error {
	return consume(ctx, c.channel, GifEventQueue, handler.HandleGifEvent)
}

func (c *Consumer) ConsumeNotificationEvents(ctx context.Context, handler NotificationEventHandler) error {
	return consume(ctx, c.channel, NotificationEventQueue, handler.HandleNotificationEvent)
}

func consume[T any](ctx context.Context, ch *amqp091.Channel, queue string, handle func(context.Context, *T) error) error {
	msgs, err := ch.Consume(
		queue,
		"",    // consumer
		false, // auto-ack (设置为false，手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer on %s: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Infof("%s consumer context cancelled", queue)
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Infof("%s consumer channel closed", queue)
					return
				}
				handleBody(ctx, d.Body, &d, handle)
			}
		}
	}()

	return nil
}

// Acknowledger is the subset of amqp091.Delivery used for acking.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// handleBody decodes one delivery and acks it according to the handler result.
// Undecodable bodies are dropped, handler failures are requeued.
func handleBody[T any](ctx context.Context, body []byte, ack Acknowledger, handle func(context.Context, *T) error) {
	var event T
	if err := json.Unmarshal(body, &event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to unmarshal event: %v", err)
		ack.Nack(false, false) // 拒绝消息，不重新入队
		return
	}

	if err := handle(ctx, &event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to handle event: %v", err)
		ack.Nack(false, true) // 拒绝消息，重新入队
		return
	}

	ack.Ack(false) // 确认消息
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
