package core

import (
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:         "t1",
		UserID:     "u1",
		CategoryID: "c1",
		Amount:     Money{Cents: 1250},
		Kind:       Expense,
		Note:       "groceries",
		OccurredAt: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"bad kind", func(tr *Transaction) { tr.Kind = "transfer" }, ErrInvalidKind},
		{"zero amount", func(tr *Transaction) { tr.Amount = Money{} }, ErrInvalidAmount},
		{"no category", func(tr *Transaction) { tr.CategoryID = "  " }, ErrEmptyCategory},
		{"zero time", func(tr *Transaction) { tr.OccurredAt = time.Time{} }, ErrZeroOccurrence},
		{"long note", func(tr *Transaction) { tr.Note = strings.Repeat("x", 201) }, ErrNoteTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTransaction()
			tt.mutate(&tr)
			if err := tr.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{ID: "c1", UserID: "u1", Name: "Food", Kind: Expense}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	c.Name = ""
	if err := c.Validate(); err != ErrEmptyName {
		t.Errorf("empty name: got %v, want %v", err, ErrEmptyName)
	}
	c.Name = "Food"
	c.Kind = "savings"
	if err := c.Validate(); err != ErrInvalidKind {
		t.Errorf("bad kind: got %v, want %v", err, ErrInvalidKind)
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		tz string
		ok bool
	}{
		{"", true},
		{"UTC", true},
		{"Europe/Warsaw", true},
		{"America/New_York", true},
		{"Not/AZone", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		p := Profile{UserID: "u1", Timezone: tt.tz}
		err := p.Validate()
		if tt.ok && err != nil {
			t.Errorf("timezone %q rejected: %v", tt.tz, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("timezone %q accepted", tt.tz)
		}
	}
}
