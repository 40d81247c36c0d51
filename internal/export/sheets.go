// Package export appends monthly summaries to a Google Sheets spreadsheet,
// one row per category plus a totals row. Used by the worker after an
// analysis run so the household sheet stays current.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds the exporter from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Summaries"), GOOGLE_CREDENTIALS_JSON for explicit credentials, otherwise
// ADC applies.
func NewFromEnv(ctx context.Context) (*SheetsExporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Summaries"
	}

	var opts []goption.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); creds != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(creds)))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendSummary writes the summary below the existing rows. Row layout:
// month, category, income, expenses, balance, count; the totals row uses
// "TOTAL" as the category.
func (e *SheetsExporter) AppendSummary(ctx context.Context, userID string, s core.MonthlySummary) error {
	values := make([][]any, 0, len(s.Categories)+1)
	for _, c := range s.Categories {
		values = append(values, []any{
			s.Month, c.CategoryName, c.Income, c.Expenses, c.Balance, c.TransactionCount,
		})
	}
	values = append(values, []any{
		s.Month, "TOTAL", s.TotalIncome, s.TotalExpenses, s.Balance, "",
	})

	rangeRef := fmt.Sprintf("%s!A:F", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary rows: %w", err)
	}

	slog.InfoContext(ctx, "Summary exported to Google Sheets",
		"user_id", userID,
		"month", s.Month,
		"rows", len(values),
		"sheet", e.sheetName)

	return nil
}
