package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of traces without a TTL (2100-01-01).
const farFuture = 4102444800

// Store implements ports.TraceStore using Redis.
// Each trace is a list of JSON events; a sorted set indexes stages by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of traces, refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "kinetic:trace:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(stageID string) string {
	return s.prefix + stageID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Append pushes the event at the end of the stage's trace.
func (s *Store) Append(ctx context.Context, stageID string, event domain.TransitionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key(stageID), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(stageID), s.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: stageID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// List returns the stage's trace.
func (s *Store) List(ctx context.Context, stageID string) ([]domain.TransitionEvent, error) {
	values, err := s.client.LRange(ctx, s.key(stageID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trace from redis: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrTraceNotFound
	}

	events := make([]domain.TransitionEvent, 0, len(values))
	for _, v := range values {
		var e domain.TransitionEvent
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Delete removes the stage's trace.
func (s *Store) Delete(ctx context.Context, stageID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(stageID))
	pipe.ZRem(ctx, s.indexKey(), stageID)

	_, err := pipe.Exec(ctx)
	return err
}

// Stages lists stages with a live trace, pruning expired index entries first.
func (s *Store) Stages(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired traces: %w", err)
	}

	stages, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	return stages, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
