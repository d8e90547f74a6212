package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type Producer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
	}

	// 声明exchanges和queues
	if err := setupTopology(ch); err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return producer, nil
}

func setupTopology(ch *amqp091.Channel) error {
	for _, b := range bindings {
		err := ch.ExchangeDeclare(
			b.exchange,
			"direct",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", b.exchange, err)
		}

		_, err = ch.QueueDeclare(
			b.queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		if err = ch.QueueBind(b.queue, "", b.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

func (p *Producer) publish(ctx context.Context, exchange string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for %s: %w", exchange, err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		exchange,
		"",
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", exchange, err)
	}

	hlog.CtxDebugf(ctx, "Published event to %s: %s", exchange, body)
	return nil
}

func (p *Producer) PublishLikeEvent(ctx context.Context, event *LikeEvent) error {
	stamp(&event.EventID, &event.Timestamp)
	return p.publish(ctx, LikeEventExchange, event)
}

func (p *Producer) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	stamp(&event.EventID, &event.Timestamp)
	return p.publish(ctx, CommentEventExchange, event)
}

func (p *Producer) PublishFollowEvent(ctx context.Context, event *FollowEvent) error {
	stamp(&event.EventID, &event.Timestamp)
	return p.publish(ctx, FollowEventExchange, event)
}

func (p *Producer) PublishGifEvent(ctx context.Context, event *GifEvent) error {
	stamp(&event.EventID, &event.Timestamp)
	return p.publish(ctx, GifEventExchange, event)
}

func (p *Producer) PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error {
	stamp(&event.EventID, &event.Timestamp)
	return p.publish(ctx, NotificationEventExchange, event)
}

// stamp 补全事件ID和时间戳, 消费端以事件ID去重
func stamp(id *string, ts *int64) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *ts == 0 {
		*ts = time.Now().Unix()
	}
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
