// Package inmemory provides a map-backed storage driver for sessions that
// have no database configured.
package inmemory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/wahida/tutor/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of turns
	mu sync.RWMutex

	// turns maps turn ID to turn
	turns map[string]*storage.Turn

	// order holds turn IDs in insertion order
	order []string
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		turns: make(map[string]*storage.Turn),
	}
}

// Put stores a copy of turn. Returns false if the ID is already stored.
func (s *Driver) Put(_ context.Context, turn *storage.Turn) (bool, error) {
	if turn == nil {
		return false, errors.New("cannot store nil turn")
	}
	if turn.ID == "" {
		return false, errors.New("cannot store turn without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turn.ID]; ok {
		return false, nil
	}

	s.turns[turn.ID] = clone(turn)
	s.order = append(s.order, turn.ID)
	return true, nil
}

// Get retrieves a turn by its ID.
func (s *Driver) Get(_ context.Context, id string) (*storage.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turn, ok := s.turns[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return clone(turn), nil
}

// List returns turns ordered by creation time, oldest first.
func (s *Driver) List(_ context.Context, opts storage.ListOptions) ([]*storage.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Turn, 0, len(s.order))
	for _, id := range s.order {
		turn := s.turns[id]
		if opts.ConversationID != "" && turn.ConversationID != opts.ConversationID {
			continue
		}
		result = append(result, clone(turn))
	}

	slices.SortStableFunc(result, func(a, b *storage.Turn) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[len(result)-opts.Limit:]
	}

	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}

func clone(t *storage.Turn) *storage.Turn {
	c := *t
	c.Chunks = slices.Clone(t.Chunks)
	return &c
}
