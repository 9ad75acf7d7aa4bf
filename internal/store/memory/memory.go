// Package memory implements the store ports in process memory. It
// backs the default data backend and the HTTP layer tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fincas/internal/core"
	"fincas/internal/store"
)

type Store struct {
	mu         sync.Mutex
	users      map[string]store.User
	categories []core.Category
	txs        map[string]core.Transaction
	txOrder    []string          // insertion order, for stable listings
	owners     map[string]string // transaction id -> user id
}

// DefaultCategories are seeded into every new memory store.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "cat-salary", Name: "Salary", Color: "#16a34a", Icon: "💰", Type: core.Income},
		{ID: "cat-food", Name: "Food", Color: "#f97316", Icon: "🍕", Type: core.Expense},
		{ID: "cat-housing", Name: "Housing", Color: "#2563eb", Icon: "🏠", Type: core.Expense},
		{ID: "cat-transport", Name: "Transport", Color: "#9333ea", Icon: "🚌", Type: core.Expense},
		{ID: "cat-leisure", Name: "Leisure", Color: "#db2777", Icon: "🎬", Type: core.Expense},
		{ID: "cat-health", Name: "Health", Color: "#dc2626", Icon: "💊", Type: core.Expense},
	}
}

func New(categories []core.Category) *Store {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Store{
		users:      make(map[string]store.User),
		categories: categories,
		txs:        make(map[string]core.Transaction),
		owners:     make(map[string]string),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(_ context.Context, userID string, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0)
	for _, id := range s.txOrder {
		t, ok := s.txs[id]
		if !ok || s.owners[id] != userID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if !f.StartDate.IsEmpty() && t.Date.Time.Before(f.StartDate.Time) {
			continue
		}
		if !f.EndDate.IsEmpty() && t.Date.Time.After(f.EndDate.Time) {
			continue
		}
		out = append(out, t)
	}
	// Newest first; equal dates keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Time.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, userID string, d store.TransactionDraft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := core.Transaction{
		ID:          uuid.NewString(),
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Date:        d.Date,
	}
	if d.CategoryID != "" {
		ref, ok := s.categoryRef(d.CategoryID)
		if !ok {
			return core.Transaction{}, store.ErrUnknownCategory
		}
		t.CategoryID = d.CategoryID
		t.Category = ref
	}

	s.txs[t.ID] = t
	s.txOrder = append(s.txOrder, t.ID)
	s.owners[t.ID] = userID
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id string, p store.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txs[id]
	if !ok || s.owners[id] != userID {
		return core.Transaction{}, store.ErrNotFound
	}

	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			t.CategoryID = ""
			t.Category = nil
		} else {
			ref, ok := s.categoryRef(*p.CategoryID)
			if !ok {
				return core.Transaction{}, store.ErrUnknownCategory
			}
			t.CategoryID = *p.CategoryID
			t.Category = ref
		}
	}

	s.txs[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[id]; !ok || s.owners[id] != userID {
		return store.ErrNotFound
	}
	delete(s.txs, id)
	delete(s.owners, id)
	for i, ordered := range s.txOrder {
		if ordered == id {
			s.txOrder = append(s.txOrder[:i], s.txOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, store.ErrNotFound
}

func (s *Store) categoryRef(id string) (*core.CategoryRef, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return &core.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}, true
		}
	}
	return nil, false
}

func (s *Store) CreateUser(_ context.Context, name, email, passwordHash string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return store.User{}, store.ErrEmailTaken
		}
	}
	u := store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}
