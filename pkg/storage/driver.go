// Package storage persists conversation turns: one question sent to the
// tutor together with the chunks it retrieved and the final answer.
package storage

import (
	"context"
	"time"

	"github.com/wahida/tutor/pkg/chat"
)

// Turn is one question and the streamed answer it produced.
type Turn struct {
	ID             string
	ConversationID string
	Question       string
	Chunks         []chat.RetrievedChunk
	Response       string
	CreatedAt      time.Time
}

// Answered reports whether the stream delivered a final response.
func (t *Turn) Answered() bool {
	return t.Response != ""
}

// ListOptions narrows List.
type ListOptions struct {
	// ConversationID restricts results to one conversation. Empty means all.
	ConversationID string

	// Limit keeps only the most recent Limit turns. Zero means no limit.
	Limit int
}

// Driver defines the interface for persisting and retrieving turns in a
// storage backend.
type Driver interface {
	// Put stores a turn. Returns true if the turn was newly inserted,
	// false if a turn with the same ID already exists, in which case it
	// is a no-op.
	Put(ctx context.Context, turn *Turn) (bool, error)

	// Get retrieves a turn by its ID.
	Get(ctx context.Context, id string) (*Turn, error)

	// List returns turns oldest first.
	List(ctx context.Context, opts ListOptions) ([]*Turn, error)

	// Close closes the store and releases any resources.
	Close() error
}
