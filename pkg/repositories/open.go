package repositories

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
)

// DefaultDatabaseURL is used when no database is configured.
const DefaultDatabaseURL = "sqlite://blockfall.db"

// Open connects to the repository named by connStr and applies the migrations
// found under migrations/<scheme>. Supported schemes are sqlite, postgres,
// postgresql and memory.
func Open(ctx context.Context, connStr string, migrations string) (Repository, error) {
	if connStr == "" {
		connStr = DefaultDatabaseURL
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite connection string %s has no path", connStr)
		}
		repository, err := NewSQLiteRepository(ctx, path, filepath.Join(migrations, "sqlite"))
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %v", err)
		}
		return repository, nil
	case "postgres", "postgresql":
		repository, err := NewPostgresRepository(ctx, u.String(), filepath.Join(migrations, "postgres"))
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %v", err)
		}
		return repository, nil
	case "memory":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
