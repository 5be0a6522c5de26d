package conversation

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/physio-intake/internal/db"
)

// NewStore opens the store for the given driver. For sqlite, dsn is a file
// path; for postgres, a connection URL. The memory driver ignores dsn.
func NewStore(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		database, err := db.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return NewSQLiteStore(database), nil
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported conversation store driver: %q", driver)
	}
}
