package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
)

// Broadcaster fans lifecycle events out to live subscribers as JSON messages.
// Slow subscribers lose messages instead of blocking coordinators.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	buffer      int
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster whose subscribers buffer up to buffer messages.
func NewBroadcaster(buffer int, logger *slog.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Broadcaster{
		subscribers: make(map[chan string]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe returns a message channel and the function that closes it.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan string, b.buffer)
	b.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Broadcast sends msg to every subscriber.
func (b *Broadcaster) Broadcast(msg string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			b.logger.Warn("subscriber buffer full, dropping event")
		}
	}
}

func (b *Broadcaster) publish(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("failed to marshal event", "err", err)
		return
	}
	b.Broadcast(string(data))
}

// Hooks returns the lifecycle hooks publishing every event.
func (b *Broadcaster) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition:  func(_ context.Context, e *domain.TransitionEvent) { b.publish(e) },
		OnDispatch:    func(_ context.Context, e *domain.DispatchEvent) { b.publish(e) },
		OnCancel:      func(_ context.Context, e *domain.CancelEvent) { b.publish(e) },
		OnChildReport: func(_ context.Context, e *domain.ChildReportEvent) { b.publish(e) },
	}
}
