// Package backend selects and wires a persistence backend from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"bilancio/internal/memory"
	"bilancio/internal/postgres"
	"bilancio/internal/storage"
	"bilancio/internal/store"
)

type Type string

const (
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
	Memory   Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Postgres, Memory:
		return true
	default:
		return false
	}
}

func (t Type) String() string { return string(t) }

// CleanupFunc releases backend resources; may be nil.
type CleanupFunc func() error

// Config holds what each backend needs to start.
type Config struct {
	Type         Type
	SQLiteDBPath string
	PostgresURL  string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q (want sqlite, postgres or memory)", c.Type)
	}
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for the sqlite backend")
		}
	case Postgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("database URL is required for the postgres backend")
		}
	}
	return nil
}

// Open creates the configured backend and returns it with its cleanup.
func Open(cfg Config, logger *slog.Logger) (store.Store, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Type {
	case SQLite:
		st, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return st, st.Close, nil

	case Postgres:
		st, err := postgres.New(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		logger.Info("Initialized Postgres backend")
		return st, st.Close, nil

	default:
		logger.Info("Initialized memory backend")
		return memory.New(), nil, nil
	}
}
