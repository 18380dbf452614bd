package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/kinetic/pkg/domain"
)

const ext = ".jsonl"

// Store implements ports.TraceStore on the local filesystem.
// Each stage is a JSON Lines file, one transition per line.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".kinetic/traces".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".kinetic", "traces")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(stageID string) (string, error) {
	if stageID == "" {
		return "", fmt.Errorf("stageID cannot be empty")
	}
	if strings.ContainsAny(stageID, `/\`) || stageID == "." || stageID == ".." {
		return "", fmt.Errorf("invalid stageID %q", stageID)
	}
	return filepath.Join(s.BasePath, stageID+ext), nil
}

// Append writes the event as a new line and fsyncs the file.
func (s *Store) Append(ctx context.Context, stageID string, event domain.TransitionEvent) error {
	p, err := s.path(stageID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure trace directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to fsync trace file: %w", err)
	}
	return nil
}

// List reads the stage's trace file.
func (s *Store) List(ctx context.Context, stageID string) ([]domain.TransitionEvent, error) {
	p, err := s.path(stageID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrTraceNotFound
		}
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	defer f.Close()

	var events []domain.TransitionEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e domain.TransitionEvent
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trace file: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrTraceNotFound
	}
	return events, nil
}

// Delete removes the stage's trace file.
func (s *Store) Delete(ctx context.Context, stageID string) error {
	p, err := s.path(stageID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}

// Stages lists the stages with a trace file, sorted.
func (s *Store) Stages(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}

	var stages []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			stages = append(stages, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(stages)
	return stages, nil
}
