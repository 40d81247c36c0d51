package summary

import (
	"sort"

	"bilancio/internal/core"
)

// CategoryAggregate accumulates per-category cents during a single pass.
// Balance is never stored; it is derived as Income-Expenses when needed.
type CategoryAggregate struct {
	CategoryID       string
	CategoryName     string
	Income           int64
	Expenses         int64
	TransactionCount int
}

// Balance is the category's income minus expenses, in cents.
func (a CategoryAggregate) Balance() int64 {
	return a.Income - a.Expenses
}

// AggregateResult is the raw (unformatted) output of Aggregate.
type AggregateResult struct {
	Categories    []CategoryAggregate
	TotalIncome   int64
	TotalExpenses int64
}

// Aggregate groups transactions by category id in a single pass. The first
// occurrence of a category sets its name. Categories come back sorted by
// name so the output is deterministic. Empty input yields empty categories
// and zero totals.
func Aggregate(transactions []core.Transaction) AggregateResult {
	var res AggregateResult
	byID := make(map[string]*CategoryAggregate, len(transactions))

	for _, t := range transactions {
		agg, ok := byID[t.CategoryID]
		if !ok {
			agg = &CategoryAggregate{
				CategoryID:   t.CategoryID,
				CategoryName: t.CategoryName,
			}
			byID[t.CategoryID] = agg
		}
		agg.TransactionCount++
		if t.Kind == core.Income {
			agg.Income += t.Amount.Cents
			res.TotalIncome += t.Amount.Cents
		} else {
			agg.Expenses += t.Amount.Cents
			res.TotalExpenses += t.Amount.Cents
		}
	}

	res.Categories = make([]CategoryAggregate, 0, len(byID))
	for _, agg := range byID {
		res.Categories = append(res.Categories, *agg)
	}
	sort.Slice(res.Categories, func(i, j int) bool {
		if res.Categories[i].CategoryName != res.Categories[j].CategoryName {
			return res.Categories[i].CategoryName < res.Categories[j].CategoryName
		}
		return res.Categories[i].CategoryID < res.Categories[j].CategoryID
	})

	return res
}
