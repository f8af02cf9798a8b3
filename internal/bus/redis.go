package bus

import (
	"context"
	"fmt"

	"github.com/amoylab/huddle/internal/common/config"
	"github.com/amoylab/huddle/internal/common/rdb"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus implements Bus with Redis pub/sub so several servers share broadcasts
type RedisBus struct {
	logger *zap.Logger
	client redis.UniversalClient
	topic  string
}

var _ Bus = (*RedisBus)(nil)

func NewRedisBus(ctx context.Context, logger *zap.Logger, cfg config.BusRedisConfig) (*RedisBus, error) {
	client, err := rdb.NewClient(ctx, cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	return &RedisBus{
		logger: logger.Named("bus.redis"),
		client: client,
		topic:  cfg.Topic,
	}, nil
}

func (b *RedisBus) Publish(ctx context.Context, frame []byte) error {
	if err := b.client.Publish(ctx, b.topic, frame).Err(); err != nil {
		return fmt.Errorf("failed to publish frame: %w", err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, so frames
// published afterwards are not missed
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, b.topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.topic, err)
	}

	ch := make(chan []byte, 64)
	go func() {
		defer close(ch)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					b.logger.Warn("subscription channel closed", zap.String("topic", b.topic))
					return
				}
				select {
				case ch <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
