package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/revops-pilot/pkg/store/schema"
	_ "github.com/mattn/go-sqlite3"
)

type Settings struct {
	DbPath string
}

// NewDB opens a SQLite revops database and makes sure the pipeline tables exist
func NewDB(ctx context.Context, settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}

	db, err := sql.Open("sqlite3", settings.DbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite serializes writers; a single connection keeps :memory: databases shared too
	db.SetMaxOpenConns(1)

	for _, query := range schema.BootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
		}
	}
	return db, nil
}
