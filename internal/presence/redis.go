package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/huddle/internal/common/config"
	"github.com/amoylab/huddle/internal/common/rdb"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// claimScript inserts ARGV[2] under folded key ARGV[1] unless the key is taken.
// KEYS: members zset, folded hash, sequence counter.
var claimScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
local seq = redis.call('INCR', KEYS[3])
redis.call('ZADD', KEYS[1], seq, ARGV[2])
return 1
`)

// releaseScript removes ARGV[2] only if it is the name stored under ARGV[1]
var releaseScript = redis.NewScript(`
if redis.call('HGET', KEYS[2], ARGV[1]) == ARGV[2] then
	redis.call('HDEL', KEYS[2], ARGV[1])
	redis.call('ZREM', KEYS[1], ARGV[2])
	return 1
end
return 0
`)

// RedisRegistry implements Registry on Redis so several processes share one namespace
type RedisRegistry struct {
	logger     *zap.Logger
	client     redis.UniversalClient
	membersKey string
	foldedKey  string
	seqKey     string
	reserved   string
}

var _ Registry = (*RedisRegistry)(nil)

// NewRedisRegistry connects to Redis and optionally clears members left by a previous run
func NewRedisRegistry(ctx context.Context, logger *zap.Logger, reserved string, cfg config.RegistryRedisConfig) (*RedisRegistry, error) {
	client, err := rdb.NewClient(ctx, cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	// one hash tag keeps every key in the same cluster slot so the scripts can touch them together
	tag := "{" + cfg.Prefix + "}"
	r := &RedisRegistry{
		logger:     logger.Named("presence.redis"),
		client:     client,
		membersKey: tag + ":members",
		foldedKey:  tag + ":folded",
		seqKey:     tag + ":seq",
		reserved:   fold(reserved),
	}

	if cfg.ResetOnStart {
		if err := client.Del(ctx, r.membersKey, r.foldedKey, r.seqKey).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reset presence keys: %w", err)
		}
		r.logger.Info("cleared presence registry", zap.String("prefix", cfg.Prefix))
	}
	return r, nil
}

func (r *RedisRegistry) keys() []string {
	return []string{r.membersKey, r.foldedKey, r.seqKey}
}

func (r *RedisRegistry) TryClaim(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	key := fold(name)
	if key == r.reserved {
		return false, nil
	}

	n, err := claimScript.Run(ctx, r.client, r.keys(), key, name).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim name: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRegistry) Release(ctx context.Context, name string) error {
	if err := releaseScript.Run(ctx, r.client, r.keys(), fold(name), name).Err(); err != nil {
		return fmt.Errorf("failed to release name: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Snapshot(ctx context.Context) ([]string, error) {
	names, err := r.client.ZRange(ctx, r.membersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *RedisRegistry) Contains(ctx context.Context, name string) (bool, error) {
	err := r.client.ZScore(ctx, r.membersKey, name).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check member: %w", err)
	}
	return true, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
