package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// Service produces monthly summaries. Each call is independent: no caching,
// no shared state across requests.
type Service struct {
	profiles     store.ProfileStore
	transactions store.TransactionStore
	now          func() time.Time
}

func NewService(profiles store.ProfileStore, transactions store.TransactionStore) *Service {
	return &Service{
		profiles:     profiles,
		transactions: transactions,
		now:          time.Now,
	}
}

// Timezone returns the user's stored timezone preference, falling back to
// UTC when the profile row is missing or holds no timezone. Only
// store.ErrNotFound is swallowed; every other persistence error propagates.
func (s *Service) Timezone(ctx context.Context, userID string) (string, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		slog.DebugContext(ctx, "No profile, defaulting timezone to UTC", "user_id", userID)
		return "UTC", nil
	}
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	if p.Timezone == "" {
		return "UTC", nil
	}
	return p.Timezone, nil
}

// GetMonthlySummary resolves the month range in the user's timezone, fetches
// the matching transactions and aggregates them. An empty monthLabel means
// the current month. Persistence and timezone errors propagate unchanged.
func (s *Service) GetMonthlySummary(ctx context.Context, userID, monthLabel string) (core.MonthlySummary, error) {
	tz, err := s.Timezone(ctx, userID)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	rng, err := ResolveMonthRange(monthLabel, tz, s.now())
	if err != nil {
		return core.MonthlySummary{}, err
	}

	items, err := s.transactions.QueryTransactions(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("query transactions: %w", err)
	}

	agg := Aggregate(items)

	out := core.MonthlySummary{
		Month:         rng.Label,
		TotalIncome:   core.FormatCents(agg.TotalIncome),
		TotalExpenses: core.FormatCents(agg.TotalExpenses),
		Balance:       core.FormatCents(agg.TotalIncome - agg.TotalExpenses),
		Categories:    make([]core.CategorySummary, 0, len(agg.Categories)),
	}
	for _, c := range agg.Categories {
		out.Categories = append(out.Categories, core.CategorySummary{
			CategoryID:       c.CategoryID,
			CategoryName:     c.CategoryName,
			Income:           core.FormatCents(c.Income),
			Expenses:         core.FormatCents(c.Expenses),
			Balance:          core.FormatCents(c.Balance()),
			TransactionCount: c.TransactionCount,
		})
	}

	slog.DebugContext(ctx, "Monthly summary computed",
		"user_id", userID,
		"month", out.Month,
		"transactions", len(items),
		"categories", len(out.Categories))

	return out, nil
}

// MonthRange exposes range resolution for callers that need the raw window
// (transaction listing, the analysis worker).
func (s *Service) MonthRange(ctx context.Context, userID, monthLabel string) (core.MonthRange, error) {
	tz, err := s.Timezone(ctx, userID)
	if err != nil {
		return core.MonthRange{}, err
	}
	return ResolveMonthRange(monthLabel, tz, s.now())
}
