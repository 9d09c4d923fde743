package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootstrapsPipelineTables(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	now := time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)
	_, err = db.Exec(
		`INSERT INTO raw_hubspot_deals (deal_id, name, amount, stage, owner, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"HS-001", "Acme Corp Enterprise Deal", 450000.0, "proposal", "john.smith@acme.com", now, now,
	)
	require.NoError(t, err)

	var source string
	err = db.QueryRow("SELECT source_system FROM raw_hubspot_deals WHERE deal_id = ?", "HS-001").Scan(&source)
	require.NoError(t, err)
	assert.Equal(t, "hubspot", source)

	for _, table := range []string{"raw_sheets_pipeline_sheet", "canonical_pipeline", "pipeline_runs"} {
		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, table)
		assert.Equal(t, 0, count, table)
	}
}
