package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/adapters/memory"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunTraceStoreContract(t, store)
}

func TestMemoryStore_ListIsACopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "s", domain.TransitionEvent{To: domain.StateRunning}))

	got, err := store.List(ctx, "s")
	require.NoError(t, err)
	got[0].To = domain.StateFinished

	again, err := store.List(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.StateRunning, again[0].To)
}

func TestLocker(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "stage", time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "stage", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locker.Lock(ctx, "other", time.Second)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	acquired := make(chan struct{})
	go func() {
		u, err := locker.Lock(ctx, "stage", time.Second)
		if err == nil {
			_ = u(ctx)
		}
		close(acquired)
	}()

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "unlock is idempotent")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}
