package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/revops-pilot/pkg/services/config"
)

// Factory opens the database holding the raw deal tables
type Factory func(ctx context.Context, cfg config.Database) (*sql.DB, error)

// Registry manages database driver factories
type Registry interface {
	// Register adds a new driver factory
	Register(driver string, factory Factory) error
	// Open connects using the factory registered for cfg.Driver
	Open(ctx context.Context, cfg config.Database) (*sql.DB, error)
	// ListDrivers returns the registered driver names in sorted order
	ListDrivers() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry knows the embedded databases and both warehouses
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(DriverDuckDB, DuckDBFactory)
	_ = r.Register(DriverSQLite, SQLiteFactory)
	_ = r.Register(DriverSnowflake, SnowflakeFactory)
	_ = r.Register(DriverDatabricks, DatabricksFactory)
	return r
}

func (r *registry) Register(driver string, factory Factory) error {
	if driver == "" {
		return fmt.Errorf("driver name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[driver]; exists {
		return fmt.Errorf("driver %q is already registered", driver)
	}

	r.factories[driver] = factory
	return nil
}

func (r *registry) Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	r.mu.RLock()
	factory, exists := r.factories[cfg.Driver]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %q is not registered", cfg.Driver)
	}

	return factory(ctx, cfg)
}

func (r *registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}
