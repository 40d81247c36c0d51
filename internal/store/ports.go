// Package store defines the persistence ports consumed by the service and
// HTTP layers. Backends (sqlite, postgres, memory) implement these.
package store

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/core"
)

// ErrNotFound is returned by every backend when a row does not exist or does
// not belong to the requesting user.
var ErrNotFound = errors.New("not found")

type (
	ProfileStore interface {
		// GetProfile returns ErrNotFound when the user has no profile row.
		GetProfile(ctx context.Context, userID string) (core.Profile, error)
		PutProfile(ctx context.Context, p core.Profile) error
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
		// QueryTransactions returns the user's transactions with
		// occurredAt in [start, end), joined with the category name.
		QueryTransactions(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		// GetCategory returns ErrNotFound for foreign or missing ids.
		GetCategory(ctx context.Context, userID, id string) (core.Category, error)
	}

	AnalysisStore interface {
		PutAnalysis(ctx context.Context, a core.Analysis) error
		GetAnalysis(ctx context.Context, userID, month string) (core.Analysis, error)
	}
)

// Store bundles all ports a backend must provide.
type Store interface {
	ProfileStore
	TransactionStore
	CategoryStore
	AnalysisStore
}
