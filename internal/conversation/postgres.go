package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversations in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			messages JSONB NOT NULL DEFAULT '[]'::jsonb,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			summary TEXT,
			revision INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK ((NOT is_completed AND summary IS NULL) OR (is_completed AND summary IS NOT NULL AND summary <> ''))
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_one_active ON conversations (owner_id) WHERE NOT is_completed;`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner_created ON conversations (owner_id, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const pgSelectColumns = `SELECT id, owner_id, messages, is_completed, summary, revision, created_at, updated_at FROM conversations`

func scanPGConversation(row pgx.Row) (*Conversation, error) {
	var (
		c       Conversation
		raw     []byte
		summary *string
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &raw, &c.IsCompleted, &summary, &c.Revision, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if summary != nil {
		c.Summary = *summary
	}
	if err := json.Unmarshal(raw, &c.Messages); err != nil {
		return nil, fmt.Errorf("%w: conversation %s: %v", ErrMalformedTranscript, c.ID, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", c.ID, err)
	}
	return &c, nil
}

func (s *PostgresStore) FindActive(ctx context.Context, ownerID string) (*Conversation, error) {
	c, err := scanPGConversation(s.pool.QueryRow(ctx, pgSelectColumns+` WHERE owner_id = $1 AND NOT is_completed LIMIT 1`, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active conversation: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *Conversation) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	msgs, err := encodeMessages(c.Messages)
	if err != nil {
		return err
	}
	stamp(c)
	c.Revision = 0

	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversations (id, owner_id, messages, created_at, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4, $5)`,
		c.ID, c.OwnerID, msgs, c.CreatedAt, c.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrActiveExists
	}
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateActive(ctx context.Context, ownerID string, next *Conversation) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	msgs, err := encodeMessages(next.Messages)
	if err != nil {
		return err
	}
	var summary *string
	if next.IsCompleted {
		summary = &next.Summary
	}
	updatedAt := time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET messages = $1::jsonb, is_completed = $2, summary = $3, revision = revision + 1, updated_at = $4
		 WHERE id = $5 AND owner_id = $6 AND NOT is_completed AND revision = $7`,
		msgs, next.IsCompleted, summary, updatedAt, next.ID, ownerID, next.Revision,
	)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		cur, err := s.FindActive(ctx, ownerID)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		return ErrConflict
	}

	next.Revision++
	next.UpdatedAt = updatedAt
	return nil
}

func (s *PostgresStore) History(ctx context.Context, ownerID string) ([]Conversation, error) {
	rows, err := s.pool.Query(ctx, pgSelectColumns+` WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanPGConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE NOT is_completed), COUNT(*) FILTER (WHERE is_completed) FROM conversations`,
	).Scan(&st.Active, &st.Completed)
	if err != nil {
		return st, fmt.Errorf("count conversations: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
