package deals

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/de-tools/revops-pilot/pkg/models/store"
	"github.com/de-tools/revops-pilot/pkg/store/sqltx"
	"github.com/rs/zerolog"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// Store reads raw deal tables and loads sample data into them
type Store interface {
	ListRaw(ctx context.Context, source domain.SourceSystem, table string) ([]domain.RawRecord, error)
	Seed(ctx context.Context, hubspot []store.HubspotDeal, sheets []store.SheetsDeal) error
}

type dealStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &dealStore{db: db}, nil
}

// ListRaw returns every row of table keyed by column name, tagged with source.
// Column values are passed through untouched; interpretation belongs to the canonicalizer.
func (s *dealStore) ListRaw(ctx context.Context, source domain.SourceSystem, table string) ([]domain.RawRecord, error) {
	if !tableName.MatchString(table) {
		return nil, &domain.ConfigurationError{
			Source: source,
			Err:    fmt.Errorf("invalid table name %q", table),
		}
	}
	logger := zerolog.Ctx(ctx)

	rows, err := sqltx.Conn(ctx, s.db).QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("failed to close raw deal rows")
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", table, err)
	}

	var records []domain.RawRecord
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}

		fields := make(map[string]any, len(columns))
		for i, column := range columns {
			fields[column] = values[i]
		}
		records = append(records, domain.RawRecord{Source: source, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	logger.Debug().Str("table", table).Int("rows", len(records)).Msg("loaded raw deals")
	return records, nil
}

// Seed replaces the contents of both raw tables
func (s *dealStore) Seed(ctx context.Context, hubspot []store.HubspotDeal, sheets []store.SheetsDeal) error {
	tx := sqltx.GetTransaction(ctx)
	owned := tx == nil
	if owned {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin seed transaction: %w", err)
		}
		defer tx.Rollback()
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM raw_hubspot_deals"); err != nil {
		return fmt.Errorf("clear raw_hubspot_deals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM raw_sheets_pipeline_sheet"); err != nil {
		return fmt.Errorf("clear raw_sheets_pipeline_sheet: %w", err)
	}

	for _, deal := range hubspot {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO raw_hubspot_deals
			(deal_id, name, amount, stage, owner, created_at, last_modified, source_system)
			VALUES (?, ?, ?, ?, ?, ?, ?, 'hubspot')`,
			deal.DealID, deal.Name, deal.Amount, deal.Stage, deal.Owner, deal.CreatedAt, deal.LastModified,
		)
		if err != nil {
			return fmt.Errorf("insert hubspot deal %s: %w", deal.DealID, err)
		}
	}

	for _, deal := range sheets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO raw_sheets_pipeline_sheet
			(pipeline_id, deal_name, deal_amount, current_stage, account_owner, created_date, updated_date, source_system)
			VALUES (?, ?, ?, ?, ?, ?, ?, 'sheets')`,
			deal.PipelineID, deal.DealName, deal.DealAmount, deal.CurrentStage, deal.AccountOwner,
			deal.CreatedDate, deal.UpdatedDate,
		)
		if err != nil {
			return fmt.Errorf("insert sheets deal %s: %w", deal.PipelineID, err)
		}
	}

	if owned {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit seed: %w", err)
		}
	}
	return nil
}
