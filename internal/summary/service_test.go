package summary

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type fakeProfiles struct {
	profile core.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(context.Context, string) (core.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfiles) PutProfile(context.Context, core.Profile) error { return nil }

type fakeTransactions struct {
	items     []core.Transaction
	err       error
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeTransactions) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	return t, nil
}

func (f *fakeTransactions) DeleteTransaction(context.Context, string, string) error { return nil }

func (f *fakeTransactions) QueryTransactions(_ context.Context, _ string, start, end time.Time) ([]core.Transaction, error) {
	f.lastStart, f.lastEnd = start, end
	return f.items, f.err
}

var moneyPattern = regexp.MustCompile(`^-?\d+\.\d{2}$`)

func TestGetMonthlySummaryScenario(t *testing.T) {
	profiles := &fakeProfiles{profile: core.Profile{UserID: "u1", Timezone: "UTC"}}
	transactions := &fakeTransactions{items: []core.Transaction{
		tx("cat-food", "Food", 20050, core.Expense),
		tx("cat-food", "Food", 15025, core.Expense),
		tx("cat-salary", "Salary", 100000, core.Income),
	}}
	svc := NewService(profiles, transactions)

	got, err := svc.GetMonthlySummary(context.Background(), "u1", "2024-02")
	if err != nil {
		t.Fatalf("GetMonthlySummary: %v", err)
	}

	if got.Month != "2024-02" {
		t.Errorf("month = %q", got.Month)
	}
	if got.TotalIncome != "1000.00" || got.TotalExpenses != "350.75" || got.Balance != "649.25" {
		t.Errorf("totals = %s / %s / %s", got.TotalIncome, got.TotalExpenses, got.Balance)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(got.Categories))
	}
	food := got.Categories[0]
	if food.Income != "0.00" || food.Expenses != "350.75" || food.Balance != "-350.75" || food.TransactionCount != 2 {
		t.Errorf("food = %+v", food)
	}
	salary := got.Categories[1]
	if salary.Income != "1000.00" || salary.Expenses != "0.00" || salary.Balance != "1000.00" || salary.TransactionCount != 1 {
		t.Errorf("salary = %+v", salary)
	}

	for _, field := range []string{got.TotalIncome, got.TotalExpenses, got.Balance,
		food.Income, food.Expenses, food.Balance, salary.Income, salary.Expenses, salary.Balance} {
		if !moneyPattern.MatchString(field) {
			t.Errorf("money field %q does not match %s", field, moneyPattern)
		}
	}

	// The store must have been queried with the resolved half-open range.
	if !transactions.lastStart.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("query start = %v", transactions.lastStart)
	}
	if !transactions.lastEnd.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("query end = %v", transactions.lastEnd)
	}
}

func TestGetMonthlySummaryNoProfileDefaultsUTC(t *testing.T) {
	profiles := &fakeProfiles{err: store.ErrNotFound}
	transactions := &fakeTransactions{}
	svc := NewService(profiles, transactions)

	got, err := svc.GetMonthlySummary(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("missing profile must not fail: %v", err)
	}
	if got.Month == "" {
		t.Error("month label missing")
	}
	if len(got.Categories) != 0 || got.TotalIncome != "0.00" || got.TotalExpenses != "0.00" {
		t.Errorf("empty summary expected, got %+v", got)
	}
}

func TestGetMonthlySummaryProfileErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&fakeProfiles{err: boom}, &fakeTransactions{})

	_, err := svc.GetMonthlySummary(context.Background(), "u1", "2024-02")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestGetMonthlySummaryQueryErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	profiles := &fakeProfiles{profile: core.Profile{UserID: "u1", Timezone: "UTC"}}
	svc := NewService(profiles, &fakeTransactions{err: boom})

	_, err := svc.GetMonthlySummary(context.Background(), "u1", "2024-02")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestGetMonthlySummaryBadStoredTimezone(t *testing.T) {
	profiles := &fakeProfiles{profile: core.Profile{UserID: "u1", Timezone: "Nowhere/Town"}}
	svc := NewService(profiles, &fakeTransactions{})

	_, err := svc.GetMonthlySummary(context.Background(), "u1", "2024-02")
	if !errors.Is(err, ErrBadTimezone) {
		t.Errorf("err = %v, want ErrBadTimezone", err)
	}
}
