package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/revops-pilot/pkg/adapters"
	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/store/sqltx"
	"github.com/rs/zerolog"
)

// Store materializes the canonical pipeline view
type Store interface {
	// Replace swaps the whole canonical_pipeline contents for records
	Replace(ctx context.Context, records []domain.UnifiedRecord) error
	List(ctx context.Context) ([]domain.UnifiedRecord, error)
}

type pipelineStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &pipelineStore{db: db}, nil
}

func (s *pipelineStore) Replace(ctx context.Context, records []domain.UnifiedRecord) error {
	tx := sqltx.GetTransaction(ctx)
	owned := tx == nil
	if owned {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM canonical_pipeline"); err != nil {
		return fmt.Errorf("clear canonical_pipeline: %w", err)
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO canonical_pipeline (
				source_system, source_id, name, owner_id, amount, canonical_stage, last_modified
			) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			row := adapters.MapUnifiedRecordToStoreCanonicalDeal(record)
			_, err := stmt.ExecContext(ctx,
				row.SourceSystem,
				row.SourceID,
				row.Name,
				row.OwnerID,
				row.Amount,
				row.CanonicalStage,
				row.LastModified,
			)
			if err != nil {
				return fmt.Errorf("insert canonical deal %s/%s: %w", row.SourceSystem, row.SourceID, err)
			}
		}
	}

	if owned {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit canonical pipeline: %w", err)
		}
	}

	zerolog.Ctx(ctx).Debug().Int("records", len(records)).Msg("canonical pipeline replaced")
	return nil
}

func (s *pipelineStore) List(ctx context.Context) ([]domain.UnifiedRecord, error) {
	rows, err := sqltx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT source_system, source_id, name, owner_id, amount, canonical_stage, last_modified
		FROM canonical_pipeline
		ORDER BY source_system, source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query canonical pipeline: %w", err)
	}
	defer rows.Close()

	var records []domain.UnifiedRecord
	for rows.Next() {
		var (
			row         store.CanonicalDeal
			name, owner sql.NullString
		)
		if err := rows.Scan(
			&row.SourceSystem,
			&row.SourceID,
			&name,
			&owner,
			&row.Amount,
			&row.CanonicalStage,
			&row.LastModified,
		); err != nil {
			return nil, fmt.Errorf("scan canonical deal: %w", err)
		}
		row.Name = name.String
		row.OwnerID = owner.String
		records = append(records, adapters.MapStoreCanonicalDealToUnifiedRecord(row))
	}
	return records, rows.Err()
}
