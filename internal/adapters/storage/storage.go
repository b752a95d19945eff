package storage

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/quotebook/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/postgres"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config selects and configures a key/value driver.
type Config struct {
	Driver      string
	Table       string
	SQLitePath  string
	PostgresDSN string
}

// Store is a key/value store that owns resources to release on shutdown.
type Store interface {
	ports.KeyValueStore
	Close() error
}

// Open creates the configured key/value store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, err
		}

		return s, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN, cfg.Table)
		if err != nil {
			return nil, err
		}

		return s, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
