package presence

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func redisCfg(addr string) config.RegistryRedisConfig {
	return config.RegistryRedisConfig{
		RedisConfig: config.RedisConfig{ClusterType: cnst.RedisClusterTypeSingle, Addr: addr},
		Prefix:      "huddle:presence",
	}
}

func TestNewRedisRegistry_ConnectionError(t *testing.T) {
	r, err := NewRedisRegistry(context.Background(), zap.NewNop(), "System", redisCfg("127.0.0.1:0"))
	assert.Nil(t, r)
	assert.Error(t, err)
}

func TestRedisRegistry_SharedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	defer a.Close()
	b, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	defer b.Close()

	ok, err := a.TryClaim(ctx, "Dave")
	require.NoError(t, err)
	assert.True(t, ok)

	// the second process sees the claim
	ok, err = b.TryClaim(ctx, "DAVE")
	require.NoError(t, err)
	assert.False(t, ok)

	in, err := b.Contains(ctx, "Dave")
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, b.Release(ctx, "Dave"))
	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestRedisRegistry_KeysShareHashTag(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.TryClaim(ctx, "Erin")
	require.NoError(t, err)

	assert.True(t, mr.Exists("{huddle:presence}:members"))
	assert.True(t, mr.Exists("{huddle:presence}:folded"))
	assert.True(t, mr.Exists("{huddle:presence}:seq"))
	assert.Equal(t, "Erin", mr.HGet("{huddle:presence}:folded", "erin"))
}

func TestRedisRegistry_ResetOnStart(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	first, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	_, err = first.TryClaim(ctx, "Frank")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// without reset the stale member survives
	kept, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	snap, _ := kept.Snapshot(ctx)
	assert.Equal(t, []string{"Frank"}, snap)
	require.NoError(t, kept.Close())

	cfg := redisCfg(mr.Addr())
	cfg.ResetOnStart = true
	fresh, err := NewRedisRegistry(ctx, zap.NewNop(), "System", cfg)
	require.NoError(t, err)
	defer fresh.Close()
	snap, _ = fresh.Snapshot(ctx)
	assert.Empty(t, snap)
}

func TestRedisRegistry_ErrorsAfterServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := NewRedisRegistry(ctx, zap.NewNop(), "System", redisCfg(mr.Addr()))
	require.NoError(t, err)
	defer r.Close()

	mr.Close()

	_, err = r.TryClaim(ctx, "Gina")
	assert.Error(t, err)
	_, err = r.Snapshot(ctx)
	assert.Error(t, err)
	_, err = r.Contains(ctx, "Gina")
	assert.Error(t, err)
	assert.Error(t, r.Release(ctx, "Gina"))
}
