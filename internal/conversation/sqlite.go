package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ziadkadry99/physio-intake/internal/db"
)

// SQLiteStore persists conversations in the local SQLite database. The
// message log is stored as a JSON array so a turn is one row update.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store over an opened database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

const selectColumns = `SELECT id, owner_id, messages, is_completed, summary, revision, created_at, updated_at FROM conversations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var (
		c        Conversation
		raw      string
		summary  sql.NullString
		complete int
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &raw, &complete, &summary, &c.Revision, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.IsCompleted = complete == 1
	c.Summary = summary.String
	if err := json.Unmarshal([]byte(raw), &c.Messages); err != nil {
		return nil, fmt.Errorf("%w: conversation %s: %v", ErrMalformedTranscript, c.ID, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", c.ID, err)
	}
	return &c, nil
}

func (s *SQLiteStore) FindActive(ctx context.Context, ownerID string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE owner_id = ? AND is_completed = 0 LIMIT 1`, ownerID)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding active conversation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) Create(ctx context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	msgs, err := encodeMessages(c.Messages)
	if err != nil {
		return err
	}
	stamp(c)
	c.Revision = 0

	err = withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO conversations (id, owner_id, messages, is_completed, summary, revision, created_at, updated_at)
			 VALUES (?, ?, ?, 0, NULL, 0, ?, ?)`,
			c.ID, c.OwnerID, msgs, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})
	if db.IsUniqueViolation(err) {
		return ErrActiveExists
	}
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateActive(ctx context.Context, ownerID string, next *Conversation) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	msgs, err := encodeMessages(next.Messages)
	if err != nil {
		return err
	}
	var summary sql.NullString
	if next.IsCompleted {
		summary = sql.NullString{String: next.Summary, Valid: true}
	}
	updatedAt := time.Now().UTC()

	var rows int64
	err = withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE conversations
			 SET messages = ?, is_completed = ?, summary = ?, revision = revision + 1, updated_at = ?
			 WHERE id = ? AND owner_id = ? AND is_completed = 0 AND revision = ?`,
			msgs, boolToInt(next.IsCompleted), summary, updatedAt, next.ID, ownerID, next.Revision,
		)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}

	if rows == 0 {
		cur, err := s.FindActive(ctx, ownerID)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		slog.Debug("conversation update lost a race", "owner_id", ownerID, "expected_revision", next.Revision, "stored_revision", cur.Revision)
		return ErrConflict
	}

	next.Revision++
	next.UpdatedAt = updatedAt
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, ownerID string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN is_completed = 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0)
		 FROM conversations`,
	).Scan(&st.Active, &st.Completed)
	if err != nil {
		return st, fmt.Errorf("counting conversations: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeMessages(msgs []Message) (string, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("encoding messages: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// withBusyRetry retries fn with exponential backoff while SQLite reports
// the database as locked.
func withBusyRetry(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	delay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if !db.IsBusy(err) {
			return err
		}
		slog.Debug("sqlite busy, retrying", "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
