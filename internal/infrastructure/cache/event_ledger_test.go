package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryEventLedger(time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	t.Run("evento nuevo no está registrado", func(t *testing.T) {
		seen, err := l.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("evento registrado se reconoce", func(t *testing.T) {
		require.NoError(t, l.Remember(ctx, "evt_1"))
		seen, err := l.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("vence después del TTL", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		seen, err := l.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, seen)
		assert.Equal(t, 0, l.Len())
	})
}

func TestRedisEventLedger(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisEventLedgerWithClient(client, "test:")
	defer l.Close()

	seen, err := l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, l.Remember(ctx, "evt_1"))
	require.NoError(t, l.Remember(ctx, "evt_1"), "registrar dos veces no es error")

	seen, err = l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, mr.Exists("test:evt_1"))
	assert.Equal(t, DefaultEventTTL, mr.TTL("test:evt_1"))

	mr.FastForward(DefaultEventTTL + time.Second)
	seen, err = l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewRedisEventLedger_URLInvalida(t *testing.T) {
	_, err := NewRedisEventLedger(context.Background(), "no-es-una-url")
	assert.Error(t, err)
}
