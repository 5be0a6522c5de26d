package intake

import "errors"

var (
	// ErrNoActiveConversation is returned when a turn arrives for an owner
	// with no conversation in progress.
	ErrNoActiveConversation = errors.New("no active conversation, start one first")
	// ErrGeneration wraps failures from the text generator.
	ErrGeneration = errors.New("generation failed")
	// ErrConcurrentTurn is returned when another turn for the same owner
	// was persisted while this one was being generated.
	ErrConcurrentTurn = errors.New("conversation was updated by another turn, retry")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMissingOwner   = errors.New("user id is required")
)
