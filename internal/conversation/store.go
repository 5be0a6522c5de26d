package conversation

import (
	"context"
	"errors"
)

var (
	// ErrMalformedTranscript marks a stored conversation that fails validation.
	ErrMalformedTranscript = errors.New("malformed transcript")
	// ErrNotFound is returned by UpdateActive when the owner has no active conversation.
	ErrNotFound = errors.New("no active conversation")
	// ErrConflict is returned by UpdateActive when the active conversation
	// changed since it was read.
	ErrConflict = errors.New("conversation modified concurrently")
	// ErrActiveExists is returned by Create when the owner already has an
	// active conversation.
	ErrActiveExists = errors.New("active conversation already exists")
)

// Store persists conversations. Implementations guarantee at most one
// active conversation per owner.
type Store interface {
	// FindActive returns the owner's active conversation, or nil if none.
	FindActive(ctx context.Context, ownerID string) (*Conversation, error)

	// Create inserts a new active conversation, assigning ID and timestamps
	// when unset.
	Create(ctx context.Context, c *Conversation) error

	// UpdateActive replaces the owner's active conversation with next in a
	// single write. The write only applies while the stored conversation is
	// still active and still at next.Revision; on success next.Revision is
	// incremented.
	UpdateActive(ctx context.Context, ownerID string, next *Conversation) error

	// History returns all of the owner's conversations, newest first.
	History(ctx context.Context, ownerID string) ([]Conversation, error)

	// Stats counts conversations across all owners.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats summarizes stored conversations.
type Stats struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
}
