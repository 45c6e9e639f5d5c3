package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher fans tactic events out over redis pub/sub. Delivery is
// fire-and-forget: subscribers that are offline miss the event, and the
// audit log stays the durable record.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream string, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	receivers, err := p.client.Publish(ctx, stream, data).Result()
	if err != nil {
		p.log.Warn("event publish failed",
			zap.String("stream", stream),
			zap.String("type", event.Type),
			zap.Int64("customer_id", event.CustomerID),
			zap.Error(err),
		)
		return err
	}
	p.log.Debug("event published",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.Int64("receivers", receivers),
	)
	return nil
}

type RedisSubscriber struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, log *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{client: client, log: log}
}

// Subscribe confirms the subscription, then delivers events to handler on
// a background goroutine until ctx is cancelled. A panicking handler loses
// only the event it was handling.
func (s *RedisSubscriber) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	pubsub := s.client.Subscribe(ctx, stream)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", stream, err)
	}
	msgs := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				event, err := decodeEvent(msg.Payload)
				if err != nil {
					s.log.Error("dropping undecodable event", zap.String("stream", stream), zap.Error(err))
					continue
				}
				s.deliver(stream, event, handler)
			}
		}
	}()

	return nil
}

func (s *RedisSubscriber) deliver(stream string, event Event, handler func(Event)) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event handler panicked",
				zap.String("stream", stream),
				zap.String("type", event.Type),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event)
}

func decodeEvent(payload string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, err
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	return event, nil
}
