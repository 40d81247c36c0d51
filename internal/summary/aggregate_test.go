package summary

import (
	"reflect"
	"testing"
	"time"

	"bilancio/internal/core"
)

func tx(catID, catName string, cents int64, kind core.TransactionKind) core.Transaction {
	return core.Transaction{
		ID:           catID + "-" + string(kind),
		UserID:       "u1",
		CategoryID:   catID,
		CategoryName: catName,
		Amount:       core.Money{Cents: cents},
		Kind:         kind,
		OccurredAt:   time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil)
	if len(res.Categories) != 0 || res.TotalIncome != 0 || res.TotalExpenses != 0 {
		t.Fatalf("empty input: got %+v", res)
	}
}

func TestAggregateByCategory(t *testing.T) {
	input := []core.Transaction{
		tx("cat-food", "Food", 20050, core.Expense),
		tx("cat-food", "Food", 15025, core.Expense),
		tx("cat-salary", "Salary", 100000, core.Income),
	}

	res := Aggregate(input)

	if res.TotalIncome != 100000 {
		t.Errorf("total income = %d, want 100000", res.TotalIncome)
	}
	if res.TotalExpenses != 35075 {
		t.Errorf("total expenses = %d, want 35075", res.TotalExpenses)
	}
	if len(res.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(res.Categories))
	}

	// Sorted by name: Food before Salary.
	food := res.Categories[0]
	if food.CategoryName != "Food" || food.Income != 0 || food.Expenses != 35075 ||
		food.Balance() != -35075 || food.TransactionCount != 2 {
		t.Errorf("food aggregate = %+v", food)
	}
	salary := res.Categories[1]
	if salary.CategoryName != "Salary" || salary.Income != 100000 || salary.Expenses != 0 ||
		salary.Balance() != 100000 || salary.TransactionCount != 1 {
		t.Errorf("salary aggregate = %+v", salary)
	}
}

func TestAggregateTotalsMatchCategorySums(t *testing.T) {
	input := []core.Transaction{
		tx("a", "A", 100, core.Income),
		tx("b", "B", 250, core.Expense),
		tx("a", "A", 75, core.Expense),
		tx("c", "C", 9999, core.Income),
		tx("b", "B", 1, core.Income),
	}

	res := Aggregate(input)

	var income, expenses int64
	var count int
	for _, c := range res.Categories {
		income += c.Income
		expenses += c.Expenses
		count += c.TransactionCount
		if c.Balance() != c.Income-c.Expenses {
			t.Errorf("category %s: balance %d != income-expenses %d", c.CategoryID, c.Balance(), c.Income-c.Expenses)
		}
	}
	if income != res.TotalIncome {
		t.Errorf("sum of category income %d != total %d", income, res.TotalIncome)
	}
	if expenses != res.TotalExpenses {
		t.Errorf("sum of category expenses %d != total %d", expenses, res.TotalExpenses)
	}
	if count != len(input) {
		t.Errorf("transaction count %d != input size %d", count, len(input))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	input := []core.Transaction{
		tx("a", "A", 100, core.Income),
		tx("b", "B", 250, core.Expense),
		tx("a", "A", 75, core.Expense),
	}
	first := Aggregate(input)
	second := Aggregate(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregate not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAggregateFirstOccurrenceSetsName(t *testing.T) {
	input := []core.Transaction{
		tx("a", "Groceries", 100, core.Expense),
		{
			ID: "x", UserID: "u1", CategoryID: "a", CategoryName: "Renamed",
			Amount: core.Money{Cents: 50}, Kind: core.Expense,
			OccurredAt: time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
		},
	}
	res := Aggregate(input)
	if len(res.Categories) != 1 || res.Categories[0].CategoryName != "Groceries" {
		t.Errorf("got %+v, want single category named Groceries", res.Categories)
	}
}
