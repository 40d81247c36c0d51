package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/analysis"
	"bilancio/internal/core"
	"bilancio/internal/memory"
	"bilancio/internal/openrouter"
	"bilancio/internal/summary"
)

type stubChat struct {
	err error
}

func (s *stubChat) Chat(context.Context, openrouter.Options) (openrouter.ChatResponse, error) {
	if s.err != nil {
		return openrouter.ChatResponse{}, s.err
	}
	return openrouter.ChatResponse{Model: "test/model", Content: "all good"}, nil
}

type recordingExporter struct {
	calls int
	err   error
}

func (r *recordingExporter) AppendSummary(context.Context, string, core.MonthlySummary) error {
	r.calls++
	return r.err
}

func newWorkerFixture(t *testing.T, chatErr error, exporter SummaryExporter) (*AnalysisWorker, *memory.Store) {
	t.Helper()
	st := memory.New()

	cat, err := st.CreateCategory(context.Background(), core.Category{UserID: "u1", Name: "Food", Kind: core.Expense})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	_, err = st.CreateTransaction(context.Background(), core.Transaction{
		UserID:     "u1",
		CategoryID: cat.ID,
		Amount:     core.Money{Cents: 20050},
		Kind:       core.Expense,
		OccurredAt: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	svc := summary.NewService(st, st)
	gen := analysis.NewGenerator(&stubChat{err: chatErr}, st, "test/model")
	return NewAnalysisWorker(svc, gen, exporter), st
}

func TestHandleRequestGeneratesAndExports(t *testing.T) {
	exporter := &recordingExporter{}
	w, st := newWorkerFixture(t, nil, exporter)

	err := w.HandleRequest(context.Background(), amqp.NewAnalysisRequestMessage("u1", "2024-02"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	a, err := st.GetAnalysis(context.Background(), "u1", "2024-02")
	if err != nil {
		t.Fatalf("analysis not stored: %v", err)
	}
	if a.Content != "all good" {
		t.Errorf("content = %q", a.Content)
	}
	if exporter.calls != 1 {
		t.Errorf("exporter calls = %d, want 1", exporter.calls)
	}
}

func TestHandleRequestChatFailureRequeues(t *testing.T) {
	w, _ := newWorkerFixture(t, errors.New("upstream down"), nil)

	err := w.HandleRequest(context.Background(), amqp.NewAnalysisRequestMessage("u1", "2024-02"))
	if err == nil {
		t.Fatal("chat failure must return an error so the message is requeued")
	}
}

func TestHandleRequestBadMonthDropped(t *testing.T) {
	w, _ := newWorkerFixture(t, nil, nil)

	// Returning nil acks the message; a bad label must never loop forever.
	err := w.HandleRequest(context.Background(), amqp.NewAnalysisRequestMessage("u1", "2024-13"))
	if err != nil {
		t.Fatalf("bad month should be dropped, got %v", err)
	}
}

func TestHandleRequestExportFailureStillAcks(t *testing.T) {
	exporter := &recordingExporter{err: errors.New("sheets quota")}
	w, st := newWorkerFixture(t, nil, exporter)

	err := w.HandleRequest(context.Background(), amqp.NewAnalysisRequestMessage("u1", "2024-02"))
	if err != nil {
		t.Fatalf("export failure must not requeue: %v", err)
	}
	if _, err := st.GetAnalysis(context.Background(), "u1", "2024-02"); err != nil {
		t.Errorf("analysis should be stored despite export failure: %v", err)
	}
}
