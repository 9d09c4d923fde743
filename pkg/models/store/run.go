package store

import (
	"database/sql"
	"time"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run is a row of pipeline_runs
type Run struct {
	ID          string
	Client      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      string
	Error       sql.NullString
	StartedAt   time.Time
	FinishedAt  sql.NullTime
}
