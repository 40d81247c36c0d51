// Package postgres is the managed-Postgres persistence backend. The schema
// and its row-level-security policies are owned by the database provider;
// this package only issues queries, always scoped to the user id.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, timezone FROM profiles WHERE user_id = $1`,
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

func (s *Store) PutProfile(ctx context.Context, p core.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, timezone, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   timezone = EXCLUDED.timezone,
		   updated_at = now()`,
		p.UserID, p.DisplayName, p.Timezone)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	slog.InfoContext(ctx, "Profile saved", "user_id", p.UserID, "timezone", p.Timezone)
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, kind) VALUES ($1, $2, $3, $4)`,
		c.ID, c.UserID, c.Name, string(c.Kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind FROM categories WHERE user_id = $1 ORDER BY name`,
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

func (s *Store) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	var c core.Category
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind FROM categories WHERE user_id = $1 AND id = $2`,
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

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.OccurredAt = t.OccurredAt.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount_cents, kind, note, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.CategoryID, t.Amount.Cents, string(t.Kind), t.Note, t.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID, "user_id", t.UserID, "kind", t.Kind, "amount_cents", t.Amount.Cents)
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
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

func (s *Store) QueryTransactions(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.category_id, c.name, t.amount_cents, t.kind, t.note, t.occurred_at
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1 AND t.occurred_at >= $2 AND t.occurred_at < $3
		 ORDER BY t.occurred_at`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind string
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName,
			&t.Amount.Cents, &kind, &t.Note, &t.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		t.OccurredAt = t.OccurredAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) PutAnalysis(ctx context.Context, a core.Analysis) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (user_id, month, model, content, generated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, month) DO UPDATE SET
		   model = EXCLUDED.model,
		   content = EXCLUDED.content,
		   generated_at = EXCLUDED.generated_at`,
		a.UserID, a.Month, a.Model, a.Content, a.GeneratedAt.UTC())
	if err != nil {
		return fmt.Errorf("put analysis: %w", err)
	}
	slog.InfoContext(ctx, "Analysis saved", "user_id", a.UserID, "month", a.Month, "model", a.Model)
	return nil
}

func (s *Store) GetAnalysis(ctx context.Context, userID, month string) (core.Analysis, error) {
	var a core.Analysis
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, month, model, content, generated_at FROM analyses
		 WHERE user_id = $1 AND month = $2`,
		userID, month,
	).Scan(&a.UserID, &a.Month, &a.Model, &a.Content, &a.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Analysis{}, store.ErrNotFound
	}
	if err != nil {
		return core.Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	a.GeneratedAt = a.GeneratedAt.UTC()
	return a, nil
}
