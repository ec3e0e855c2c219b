// Package draftstore keeps per-session paint drafts with an undo history.
package draftstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
)

// DefaultHistoryLimit bounds the undo history when none is configured.
const DefaultHistoryLimit = 50

type memoryEntry struct {
	current domain.Draft
	history []domain.Draft
}

// MemoryStore is a process-local DraftStore. Drafts do not expire.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	now     func() time.Time
	entries map[domain.DraftKey]*memoryEntry
}

// NewMemoryStore keeps at most historyLimit earlier versions per draft.
// A negative limit falls back to DefaultHistoryLimit.
func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit < 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &MemoryStore{
		limit:   historyLimit,
		now:     time.Now,
		entries: make(map[domain.DraftKey]*memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, key domain.DraftKey) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return domain.Draft{}, nil
	}
	return e.snapshot(), nil
}

func (s *MemoryStore) Save(_ context.Context, key domain.DraftKey, blocks []domain.AssignmentBlock, expectedVersion int) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{}
	}
	if expectedVersion > 0 && expectedVersion != e.current.Version {
		return domain.Draft{}, fmt.Errorf("%w: expected %d, current %d", domain.ErrVersionMismatch, expectedVersion, e.current.Version)
	}
	s.entries[key] = e
	if s.limit > 0 {
		e.history = append(e.history, e.current)
		if len(e.history) > s.limit {
			e.history = e.history[len(e.history)-s.limit:]
		}
	}
	e.current = domain.Draft{
		Blocks:    cloneBlocks(blocks),
		Version:   e.current.Version + 1,
		UpdatedAt: s.now().UTC(),
	}
	return e.snapshot(), nil
}

func (s *MemoryStore) Undo(_ context.Context, key domain.DraftKey) (domain.Draft, error) {
	if err := key.Validate(); err != nil {
		return domain.Draft{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || len(e.history) == 0 {
		return domain.Draft{}, domain.ErrNothingToUndo
	}
	prev := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.current = domain.Draft{
		Blocks:    prev.Blocks,
		Version:   e.current.Version + 1,
		UpdatedAt: s.now().UTC(),
	}
	return e.snapshot(), nil
}

func (s *MemoryStore) Clear(_ context.Context, key domain.DraftKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	e.history = nil
	e.current = domain.Draft{Version: e.current.Version + 1, UpdatedAt: s.now().UTC()}
	return nil
}

func (e *memoryEntry) snapshot() domain.Draft {
	d := e.current
	d.Blocks = cloneBlocks(d.Blocks)
	d.UndoDepth = len(e.history)
	return d
}

func cloneBlocks(blocks []domain.AssignmentBlock) []domain.AssignmentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]domain.AssignmentBlock, len(blocks))
	for i, b := range blocks {
		b.EntityIDs = append([]string(nil), b.EntityIDs...)
		out[i] = b
	}
	return out
}
