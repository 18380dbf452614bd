package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockLost is returned when a lock expired or was taken by another holder.
var ErrLockLost = errors.New("lock lost")

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker provides mutual exclusion across processes.
// The stage uses it so only one process drives (and records) a stage id at a time.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// Renewer is implemented by lockers whose locks expire after their ttl.
// Holders renew periodically to keep the lock for longer than one ttl.
type Renewer interface {
	// Renew resets the ttl of the lock this locker holds on key.
	// It returns ErrLockLost when the lock is no longer held.
	Renew(ctx context.Context, key string, ttl time.Duration) error
}
