package core

import "time"

// MonthRange is a half-open UTC interval [Start, End) covering one calendar
// month as experienced in a particular timezone, plus its YYYY-MM label.
type MonthRange struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether an instant falls inside the range. The start is
// included, the end excluded, so the first instant of the next month never
// counts twice.
func (r MonthRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// CategorySummary is the per-category slice of a monthly summary. All money
// fields are decimal strings with exactly two fractional digits.
type CategorySummary struct {
	CategoryID       string `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	Income           string `json:"income"`
	Expenses         string `json:"expenses"`
	Balance          string `json:"balance"`
	TransactionCount int    `json:"transactionCount"`
}

// MonthlySummary is the DTO returned by the summary endpoint.
type MonthlySummary struct {
	Month         string            `json:"month"`
	TotalIncome   string            `json:"totalIncome"`
	TotalExpenses string            `json:"totalExpenses"`
	Balance       string            `json:"balance"`
	Categories    []CategorySummary `json:"categories"`
}
