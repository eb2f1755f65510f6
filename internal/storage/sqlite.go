package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is where the local ledger lives when no path is given.
const DefaultSQLitePath = "data/hoops_edge.db"

// NewSQLiteStore opens or creates a SQLite ledger at path.
func NewSQLiteStore(ctx context.Context, path string, logger *zap.Logger) (*SQLStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer; WAL lets readers proceed
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		_, err = db.ExecContext(ctx, pragma)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	store := NewSQLStore(db, DialectSQLite, logger)
	err = store.EnsureSchema(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store.logger.Info("sqlite-store-opened", zap.String("path", path))
	return store, nil
}
