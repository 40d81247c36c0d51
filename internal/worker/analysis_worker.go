// Package worker processes queued analysis requests: recompute the monthly
// summary, generate the LLM commentary and optionally export the summary to
// Google Sheets.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/analysis"
	"bilancio/internal/core"
	"bilancio/internal/summary"
)

// SummaryExporter mirrors export.SheetsExporter; nil disables exporting.
type SummaryExporter interface {
	AppendSummary(ctx context.Context, userID string, s core.MonthlySummary) error
}

type AnalysisWorker struct {
	summaries *summary.Service
	generator *analysis.Generator
	exporter  SummaryExporter
}

func NewAnalysisWorker(summaries *summary.Service, generator *analysis.Generator, exporter SummaryExporter) *AnalysisWorker {
	return &AnalysisWorker{
		summaries: summaries,
		generator: generator,
		exporter:  exporter,
	}
}

// HandleRequest processes one queued analysis request. A returned error
// makes the consumer nack-and-requeue the message.
func (w *AnalysisWorker) HandleRequest(ctx context.Context, msg *amqp.AnalysisRequestMessage) error {
	if !summary.MonthLabelPattern.MatchString(msg.Month) {
		// Never requeue a message that can never succeed.
		slog.WarnContext(ctx, "Dropping analysis request with bad month label",
			"user_id", msg.UserID, "month", msg.Month)
		return nil
	}

	slog.InfoContext(ctx, "Processing analysis request",
		"user_id", msg.UserID, "month", msg.Month)

	monthlySummary, err := w.summaries.GetMonthlySummary(ctx, msg.UserID, msg.Month)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}

	if _, err := w.generator.Generate(ctx, msg.UserID, monthlySummary); err != nil {
		return fmt.Errorf("generate analysis: %w", err)
	}

	if w.exporter != nil {
		if err := w.exporter.AppendSummary(ctx, msg.UserID, monthlySummary); err != nil {
			// The analysis is stored; a failed export is logged, not retried,
			// so the message is not requeued and regenerated.
			slog.ErrorContext(ctx, "Summary export failed",
				"error", err, "user_id", msg.UserID, "month", msg.Month)
		}
	}

	return nil
}
