package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/store/sqltx"
)

const defaultListLimit = 20

// Store keeps the history of reporting runs
type Store interface {
	Create(ctx context.Context, run store.Run) error
	Finish(ctx context.Context, id string, status string, runErr error, finishedAt time.Time) error
	List(ctx context.Context, limit int) ([]store.Run, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{db: db}, nil
}

func (s *runStore) Create(ctx context.Context, run store.Run) error {
	_, err := sqltx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO pipeline_runs (id, client, period_start, period_end, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Client, run.PeriodStart, run.PeriodEnd, run.Status, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (s *runStore) Finish(ctx context.Context, id string, status string, runErr error, finishedAt time.Time) error {
	var errMsg sql.NullString
	if runErr != nil {
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := sqltx.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE pipeline_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errMsg, finishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

func (s *runStore) List(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := sqltx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, client, period_start, period_end, status, error, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var result []store.Run
	for rows.Next() {
		var run store.Run
		if err := rows.Scan(
			&run.ID,
			&run.Client,
			&run.PeriodStart,
			&run.PeriodEnd,
			&run.Status,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, run)
	}
	return result, rows.Err()
}
