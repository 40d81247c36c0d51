// Package analysis turns a monthly summary into a short natural-language
// commentary via the chat completion client and stores the result.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/openrouter"
	"bilancio/internal/store"
)

// ChatClient is the slice of the completion client the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, opts openrouter.Options) (openrouter.ChatResponse, error)
}

type Generator struct {
	chat      ChatClient
	analyses  store.AnalysisStore
	model     string
	maxTokens int
}

func NewGenerator(chat ChatClient, analyses store.AnalysisStore, model string) *Generator {
	return &Generator{
		chat:      chat,
		analyses:  analyses,
		model:     model,
		maxTokens: 512,
	}
}

const systemPrompt = "You are a personal finance assistant. Given a monthly " +
	"budget summary, write a short analysis (3-5 sentences) in plain language: " +
	"overall balance, the dominant spending categories and one practical " +
	"observation. Do not invent numbers that are not in the summary."

// BuildPrompt renders the summary as a compact plain-text table for the
// model. Keeping it textual rather than raw JSON gives noticeably better
// completions on small models.
func BuildPrompt(s core.MonthlySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Month: %s\n", s.Month)
	fmt.Fprintf(&b, "Total income: %s\nTotal expenses: %s\nBalance: %s\n", s.TotalIncome, s.TotalExpenses, s.Balance)
	if len(s.Categories) > 0 {
		b.WriteString("Categories (name, income, expenses, balance, transactions):\n")
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "- %s: %s, %s, %s, %d\n",
				c.CategoryName, c.Income, c.Expenses, c.Balance, c.TransactionCount)
		}
	} else {
		b.WriteString("No transactions were recorded this month.\n")
	}
	return b.String()
}

// Generate produces and stores the analysis for one user month. Upstream
// chat failures propagate as *openrouter.APIError so callers can map them.
func (g *Generator) Generate(ctx context.Context, userID string, summary core.MonthlySummary) (core.Analysis, error) {
	resp, err := g.chat.Chat(ctx, openrouter.Options{
		Model: g.model,
		Messages: []openrouter.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(summary)},
		},
		Temperature: 0.4,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return core.Analysis{}, fmt.Errorf("chat completion: %w", err)
	}

	a := core.Analysis{
		UserID:      userID,
		Month:       summary.Month,
		Model:       resp.Model,
		Content:     strings.TrimSpace(resp.Content),
		GeneratedAt: time.Now().UTC(),
	}
	if err := g.analyses.PutAnalysis(ctx, a); err != nil {
		return core.Analysis{}, fmt.Errorf("store analysis: %w", err)
	}

	slog.InfoContext(ctx, "Analysis generated",
		"user_id", userID,
		"month", summary.Month,
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens)

	return a, nil
}
