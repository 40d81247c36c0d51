// Package memory is an in-memory backend used for development and handler
// tests. It implements the same ports as the database backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type Store struct {
	mu           sync.Mutex
	profiles     map[string]core.Profile
	categories   map[string]core.Category
	transactions map[string]core.Transaction
	analyses     map[string]core.Analysis // key: userID + "|" + month
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		profiles:     make(map[string]core.Profile),
		categories:   make(map[string]core.Category),
		transactions: make(map[string]core.Transaction),
		analyses:     make(map[string]core.Analysis),
	}
}

func (s *Store) GetProfile(_ context.Context, userID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) PutProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.OccurredAt = t.OccurredAt.UTC()
	if c, ok := s.categories[t.CategoryID]; ok {
		t.CategoryName = c.Name
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) QueryTransactions(_ context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if t.OccurredAt.Before(start) || !t.OccurredAt.Before(end) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *Store) PutAnalysis(_ context.Context, a core.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.UserID+"|"+a.Month] = a
	return nil
}

func (s *Store) GetAnalysis(_ context.Context, userID, month string) (core.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.analyses[userID+"|"+month]
	if !ok {
		return core.Analysis{}, store.ErrNotFound
	}
	return a, nil
}
