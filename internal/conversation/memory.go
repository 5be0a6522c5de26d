package conversation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items []*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) activeLocked(ownerID string) *Conversation {
	for _, c := range s.items {
		if c.OwnerID == ownerID && !c.IsCompleted {
			return c
		}
	}
	return nil
}

func (s *MemoryStore) FindActive(_ context.Context, ownerID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.activeLocked(ownerID)
	if c == nil {
		return nil, nil
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked(c.OwnerID) != nil {
		return ErrActiveExists
	}
	stamp(c)
	c.Revision = 0
	s.items = append(s.items, c.Clone())
	return nil
}

func (s *MemoryStore) UpdateActive(_ context.Context, ownerID string, next *Conversation) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.activeLocked(ownerID)
	if cur == nil {
		return ErrNotFound
	}
	if cur.ID != next.ID || cur.Revision != next.Revision {
		return ErrConflict
	}

	next.Revision++
	next.UpdatedAt = time.Now().UTC()
	*cur = *next.Clone()
	return nil
}

func (s *MemoryStore) History(_ context.Context, ownerID string) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Conversation
	for _, c := range s.items {
		if c.OwnerID == ownerID {
			out = append(out, *c.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	for _, c := range s.items {
		if c.IsCompleted {
			st.Completed++
		} else {
			st.Active++
		}
	}
	return st, nil
}

func (s *MemoryStore) Close() error { return nil }

// stamp fills in the ID and timestamps of a conversation about to be created.
func stamp(c *Conversation) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
}
