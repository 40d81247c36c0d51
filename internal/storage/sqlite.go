// Package storage is the SQLite persistence backend. Every query is scoped
// to a user id; instants are stored as UTC unix milliseconds so the
// half-open month comparisons stay exact.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetProfile implements store.ProfileStore.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, timezone FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.DisplayName, &p.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, store.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// PutProfile implements store.ProfileStore.
func (s *SQLiteStore) PutProfile(ctx context.Context, p core.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, timezone, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   timezone = excluded.timezone,
		   updated_at = excluded.updated_at`,
		p.UserID, p.DisplayName, p.Timezone, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	slog.InfoContext(ctx, "Profile saved", "user_id", p.UserID, "timezone", p.Timezone)
	return nil
}

// CreateCategory implements store.CategoryStore.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Kind), time.Now().UnixMilli())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// ListCategories implements store.CategoryStore.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind FROM categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.TransactionKind(kind)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// GetCategory implements store.CategoryStore.
func (s *SQLiteStore) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	var c core.Category
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind FROM categories WHERE user_id = ? AND id = ?`,
		userID, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Kind = core.TransactionKind(kind)
	return c, nil
}

// CreateTransaction implements store.TransactionStore.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.OccurredAt = t.OccurredAt.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount_cents, kind, note, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.CategoryID, t.Amount.Cents, string(t.Kind), t.Note,
		t.OccurredAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

// DeleteTransaction implements store.TransactionStore. Deleting a row that
// does not exist (or belongs to another user) reports store.ErrNotFound.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// QueryTransactions implements store.TransactionStore. The range is
// half-open: occurred_at >= start and < end.
func (s *SQLiteStore) QueryTransactions(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.category_id, c.name, t.amount_cents, t.kind, t.note, t.occurred_at
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.occurred_at >= ? AND t.occurred_at < ?
		 ORDER BY t.occurred_at`,
		userID, start.UTC().UnixMilli(), end.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind string
		var occurredAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName,
			&t.Amount.Cents, &kind, &t.Note, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		t.OccurredAt = time.UnixMilli(occurredAt).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// PutAnalysis implements store.AnalysisStore; one analysis per user month,
// regenerating replaces the previous one.
func (s *SQLiteStore) PutAnalysis(ctx context.Context, a core.Analysis) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (user_id, month, model, content, generated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, month) DO UPDATE SET
		   model = excluded.model,
		   content = excluded.content,
		   generated_at = excluded.generated_at`,
		a.UserID, a.Month, a.Model, a.Content, a.GeneratedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put analysis: %w", err)
	}
	slog.InfoContext(ctx, "Analysis saved", "user_id", a.UserID, "month", a.Month, "model", a.Model)
	return nil
}

// GetAnalysis implements store.AnalysisStore.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, userID, month string) (core.Analysis, error) {
	var a core.Analysis
	var generatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, month, model, content, generated_at FROM analyses
		 WHERE user_id = ? AND month = ?`,
		userID, month,
	).Scan(&a.UserID, &a.Month, &a.Model, &a.Content, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Analysis{}, store.ErrNotFound
	}
	if err != nil {
		return core.Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	a.GeneratedAt = time.UnixMilli(generatedAt).UTC()
	return a, nil
}
