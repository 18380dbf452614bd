package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/adapters/redis"
	"github.com/aretw0/kinetic/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "stage", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:stage"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:stage"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(short, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestRedisLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "stage", time.Second)
	require.NoError(t, err)

	// The lock expired and someone else took it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:stage", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:stage")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_Renew(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	assert.ErrorIs(t, locker.Renew(ctx, "stage", time.Second), ports.ErrLockLost, "nothing held yet")

	unlock, err := locker.Lock(ctx, "stage", time.Second)
	require.NoError(t, err)

	mr.FastForward(800 * time.Millisecond)
	require.NoError(t, locker.Renew(ctx, "stage", time.Second))
	assert.Equal(t, time.Second, mr.TTL("test:lock:stage"))

	mr.FastForward(800 * time.Millisecond)
	assert.True(t, mr.Exists("test:lock:stage"), "renewed lock should outlive its first ttl")

	require.NoError(t, mr.Set("test:lock:stage", "someone-else"))
	assert.ErrorIs(t, locker.Renew(ctx, "stage", time.Second), ports.ErrLockLost)

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, locker.Renew(ctx, "stage", time.Second), ports.ErrLockLost, "released lock cannot be renewed")
}
