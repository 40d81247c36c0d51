package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

type (
	TransactionKind string

	// Transaction is a single income or expense entry. OccurredAt is always
	// a UTC instant; the user's timezone only matters when deciding which
	// calendar month an instant belongs to.
	Transaction struct {
		ID           string
		UserID       string
		CategoryID   string
		CategoryName string
		Amount       Money
		Kind         TransactionKind
		Note         string
		OccurredAt   time.Time
	}

	// Category belongs to a single user; the kind restricts which
	// transactions it can hold.
	Category struct {
		ID     string
		UserID string
		Name   string
		Kind   TransactionKind
	}

	// Profile stores per-user preferences. Timezone is an IANA name and
	// drives month-boundary resolution.
	Profile struct {
		UserID      string
		DisplayName string
		Timezone    string
	}

	// Analysis is an LLM-generated commentary for one user month.
	Analysis struct {
		UserID      string
		Month       string // YYYY-MM
		Model       string
		Content     string
		GeneratedAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrZeroOccurrence  = errors.New("occurrence time not set")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
	ErrInvalidTimezone = errors.New("invalid timezone")
)

func (k TransactionKind) IsValid() bool {
	return k == Income || k == Expense
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroOccurrence
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if !c.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}

// Validate checks the timezone against the IANA database. An empty timezone
// is allowed and means "fall back to UTC".
func (p Profile) Validate() error {
	if p.Timezone == "" {
		return nil
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}
