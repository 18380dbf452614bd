package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/kinetic/pkg/ports"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when the lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire distributed lock")

var errLockBusy = errors.New("lock held")

// releaseScript deletes the lock only if it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// renewScript resets the ttl only if the lock still holds our token.
const renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Locker implements ports.DistributedLocker and ports.Renewer using Redis.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
		tokens:   make(map[string]string),
	}
}

var (
	_ ports.DistributedLocker = (*Locker)(nil)
	_ ports.Renewer           = (*Locker)(nil)
)

// Lock acquires the lock for key using SET NX PX, retrying at a constant
// interval until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	acquire := func() error {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrLockAcquire, err))
		}
		if !ok {
			return errLockBusy
		}
		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(l.interval), ctx)
	if err := backoff.Retry(acquire, policy); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()

	return func(ctx context.Context) error {
		l.mu.Lock()
		if l.tokens[key] == token {
			delete(l.tokens, key)
		}
		l.mu.Unlock()
		return l.client.Eval(ctx, releaseScript, []string{lockKey}, token).Err()
	}, nil
}

// Renew resets the ttl of the lock held on key with a token-checked PEXPIRE.
func (l *Locker) Renew(ctx context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	l.mu.Unlock()
	if !ok {
		return ports.ErrLockLost
	}

	n, err := l.client.Eval(ctx, renewScript, []string{l.prefix + "lock:" + key}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to renew lock %s: %w", key, err)
	}
	if n == 0 {
		return ports.ErrLockLost
	}
	return nil
}
