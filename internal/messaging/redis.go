package messaging

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// RedisBroker carries the topic over Redis pub/sub so that every server
// instance sees every message.
type RedisBroker struct {
	rdb   *redis.Client
	topic string
}

func NewRedisBroker(rdb *redis.Client, topic string) *RedisBroker {
	return &RedisBroker{rdb: rdb, topic: topic}
}

func (b *RedisBroker) Publish(ctx context.Context, message string) error {
	if err := b.rdb.Publish(ctx, b.topic, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.topic, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan string, error) {
	sub := b.rdb.Subscribe(ctx, b.topic)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.topic, err)
	}

	out := make(chan string, subscriberBuffer)
	go func() {
		defer close(out)
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
