package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/kinetic/pkg/domain"
)

// Store implements ports.TraceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.TransitionEvent
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.TransitionEvent),
	}
}

// Append records the event in memory.
func (s *Store) Append(ctx context.Context, stageID string, event domain.TransitionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[stageID] = append(s.data[stageID], event)
	return nil
}

// List returns a copy of the recorded trace so callers can't mutate the store.
func (s *Store) List(ctx context.Context, stageID string) ([]domain.TransitionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.data[stageID]
	if !ok {
		return nil, domain.ErrTraceNotFound
	}
	return slices.Clone(events), nil
}

// Delete removes the trace.
func (s *Store) Delete(ctx context.Context, stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, stageID)
	return nil
}

// Stages returns the stages with a recorded trace, sorted.
func (s *Store) Stages(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stages := make([]string, 0, len(s.data))
	for id := range s.data {
		stages = append(stages, id)
	}
	sort.Strings(stages)
	return stages, nil
}
