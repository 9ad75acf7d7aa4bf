// Package store defines the persistence ports for the transaction
// store service. Implementations: memory (tests, default backend) and
// storage (SQLite).
package store

import (
	"context"
	"errors"

	"fincas/internal/core"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnknownCategory = errors.New("unknown category")
)

// TransactionFilter scopes a transaction listing. Zero values mean no
// constraint on that axis; both date bounds are inclusive.
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID string
	StartDate  core.Date
	EndDate    core.Date
}

// TransactionDraft is the payload for creating a transaction.
type TransactionDraft struct {
	Type        core.TransactionType
	Amount      core.Money
	Description string
	CategoryID  string
	Date        core.Date
}

// TransactionPatch is a partial update; nil fields keep current values.
type TransactionPatch struct {
	Type        *core.TransactionType
	Amount      *core.Money
	Description *string
	CategoryID  *string
	Date        *core.Date
}

// User is an account record. PasswordHash is a bcrypt hash and never
// leaves the store layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

type TransactionStore interface {
	// ListTransactions returns the user's transactions matching the
	// filter, newest first. Returns an empty slice, never nil.
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, d TransactionDraft) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, p TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

// Store is the full persistence surface the HTTP layer depends on.
type Store interface {
	TransactionStore
	CategoryStore
	UserStore
	Close() error
}
