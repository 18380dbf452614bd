package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/kinetic/pkg/adapters/redis"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunTraceStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))

	err := store.Append(context.Background(), "stage", domain.TransitionEvent{To: domain.StateRunning})
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:stage"))
	assert.True(t, mr.Exists("test:index"))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "stage-ttl", domain.TransitionEvent{To: domain.StateRunning}))

	stages, err := store.Stages(ctx)
	require.NoError(t, err)
	assert.Contains(t, stages, "stage-ttl")

	// Key expiration in miniredis
	mr.FastForward(2 * time.Second)

	_, err = store.List(ctx, "stage-ttl")
	assert.ErrorIs(t, err, domain.ErrTraceNotFound)

	// The index is pruned lazily against wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	stages, err = store.Stages(ctx)
	require.NoError(t, err)
	assert.Empty(t, stages)
}
