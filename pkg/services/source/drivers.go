package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/store/duckdb"
	"github.com/de-tools/revops-pilot/pkg/store/sqlite"
	sf "github.com/snowflakedb/gosnowflake"
)

const (
	DriverDuckDB     = "duckdb"
	DriverSQLite     = "sqlite"
	DriverSnowflake  = "snowflake"
	DriverDatabricks = "databricks"
)

// IsEmbedded reports whether the driver stores data in a local file that revops owns.
// Embedded databases also hold canonical_pipeline and run history.
func IsEmbedded(driver string) bool {
	return driver == DriverDuckDB || driver == DriverSQLite
}

func DuckDBFactory(_ context.Context, cfg config.Database) (*sql.DB, error) {
	return duckdb.NewDB(duckdb.Settings{DbPath: cfg.Path})
}

func SQLiteFactory(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	return sqlite.NewDB(ctx, sqlite.Settings{DbPath: cfg.Path})
}

func SnowflakeFactory(_ context.Context, cfg config.Database) (*sql.DB, error) {
	dsn, err := SnowflakeDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}
	return db, nil
}

func SnowflakeDSN(cfg config.Database) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create DSN: %w", err)
	}
	return dsn, nil
}

func DatabricksFactory(_ context.Context, cfg config.Database) (*sql.DB, error) {
	dsn, err := DatabricksDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Databricks: %w", err)
	}
	return db, nil
}

func DatabricksDSN(cfg config.Database) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Host == "" || cfg.Token == "" || cfg.HTTPPath == "" {
		return "", fmt.Errorf("databricks requires host, token and http_path")
	}

	dsn := fmt.Sprintf("token:%s@%s%s", cfg.Token, cfg.Host, cfg.HTTPPath)

	params := url.Values{}
	if cfg.Catalog != "" {
		params.Set("catalog", cfg.Catalog)
	}
	if cfg.Schema != "" {
		params.Set("schema", cfg.Schema)
	}
	if qp := params.Encode(); qp != "" {
		dsn = dsn + "?" + qp
	}
	return dsn, nil
}
