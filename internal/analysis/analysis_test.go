package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/memory"
	"bilancio/internal/openrouter"
	"bilancio/internal/store"
)

type fakeChat struct {
	lastOpts openrouter.Options
	resp     openrouter.ChatResponse
	err      error
}

func (f *fakeChat) Chat(_ context.Context, opts openrouter.Options) (openrouter.ChatResponse, error) {
	f.lastOpts = opts
	return f.resp, f.err
}

func sampleSummary() core.MonthlySummary {
	return core.MonthlySummary{
		Month:         "2024-02",
		TotalIncome:   "1000.00",
		TotalExpenses: "350.75",
		Balance:       "649.25",
		Categories: []core.CategorySummary{
			{CategoryID: "c1", CategoryName: "Food", Income: "0.00", Expenses: "350.75", Balance: "-350.75", TransactionCount: 2},
			{CategoryID: "c2", CategoryName: "Salary", Income: "1000.00", Expenses: "0.00", Balance: "1000.00", TransactionCount: 1},
		},
	}
}

func TestBuildPromptIncludesFigures(t *testing.T) {
	prompt := BuildPrompt(sampleSummary())
	for _, want := range []string{"2024-02", "1000.00", "350.75", "649.25", "Food", "Salary"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptEmptyMonth(t *testing.T) {
	prompt := BuildPrompt(core.MonthlySummary{Month: "2024-03", TotalIncome: "0.00", TotalExpenses: "0.00", Balance: "0.00"})
	if !strings.Contains(prompt, "No transactions") {
		t.Errorf("empty month should say so:\n%s", prompt)
	}
}

func TestGenerateStoresAnalysis(t *testing.T) {
	chat := &fakeChat{resp: openrouter.ChatResponse{
		Model:   "test/model",
		Content: "  You saved 649.25 this month. \n",
	}}
	st := memory.New()
	g := NewGenerator(chat, st, "test/model")

	got, err := g.Generate(context.Background(), "u1", sampleSummary())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Content != "You saved 649.25 this month." {
		t.Errorf("content not trimmed: %q", got.Content)
	}
	if len(chat.lastOpts.Messages) != 2 {
		t.Fatalf("messages = %d, want system+user", len(chat.lastOpts.Messages))
	}

	stored, err := st.GetAnalysis(context.Background(), "u1", "2024-02")
	if err != nil {
		t.Fatalf("stored analysis missing: %v", err)
	}
	if stored.Model != "test/model" || stored.GeneratedAt.IsZero() {
		t.Errorf("stored analysis = %+v", stored)
	}
}

func TestGenerateChatErrorPropagates(t *testing.T) {
	apiErr := &openrouter.APIError{Kind: openrouter.KindRateLimit, StatusCode: 429, Message: "slow down"}
	g := NewGenerator(&fakeChat{err: apiErr}, memory.New(), "m")

	_, err := g.Generate(context.Background(), "u1", sampleSummary())
	var got *openrouter.APIError
	if !errors.As(err, &got) || got.Kind != openrouter.KindRateLimit {
		t.Errorf("err = %v, want wrapped rate-limit APIError", err)
	}

	if _, err := memory.New().GetAnalysis(context.Background(), "u1", "2024-02"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("nothing should be stored on failure, got err %v", err)
	}
}
