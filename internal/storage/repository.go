// Package storage implements the store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fincas/internal/core"
	"fincas/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `
	t.id, t.type, t.amount_cents, t.description, t.transaction_date,
	t.category_id, c.name, c.color, c.icon`

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f store.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{userID}

	if f.Type != "" {
		query += " AND t.type = ?"
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		query += " AND t.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if !f.StartDate.IsEmpty() {
		query += " AND t.transaction_date >= ?"
		args = append(args, f.StartDate.String())
	}
	if !f.EndDate.IsEmpty() {
		query += " AND t.transaction_date <= ?"
		args = append(args, f.EndDate.String())
	}
	query += " ORDER BY t.transaction_date DESC, t.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		dateStr    string
		categoryID sql.NullString
		catName    sql.NullString
		catColor   sql.NullString
		catIcon    sql.NullString
	)
	err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &t.Description, &dateStr,
		&categoryID, &catName, &catColor, &catIcon)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Date = date
	if categoryID.Valid {
		t.CategoryID = categoryID.String
		t.Category = &core.CategoryRef{
			ID:    categoryID.String,
			Name:  catName.String,
			Color: catColor.String,
			Icon:  catIcon.String,
		}
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, d store.TransactionDraft) (core.Transaction, error) {
	if d.CategoryID != "" {
		if _, err := r.GetCategory(ctx, d.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return core.Transaction{}, store.ErrUnknownCategory
			}
			return core.Transaction{}, err
		}
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount_cents, description, category_id, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, string(d.Type), d.Amount.Cents, d.Description,
		nullable(d.CategoryID), d.Date.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return r.getTransaction(ctx, userID, id)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id string, p store.TransactionPatch) (core.Transaction, error) {
	if p.CategoryID != nil && *p.CategoryID != "" {
		if _, err := r.GetCategory(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return core.Transaction{}, store.ErrUnknownCategory
			}
			return core.Transaction{}, err
		}
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*p.Type))
	}
	if p.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, p.Amount.Cents)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, nullable(*p.CategoryID))
	}
	if p.Date != nil {
		sets = append(sets, "transaction_date = ?")
		args = append(args, p.Date.String())
	}
	if len(sets) > 0 {
		args = append(args, id, userID)
		res, err := r.db.ExecContext(ctx,
			"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
			args...)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
		if affected == 0 {
			return core.Transaction{}, store.ErrNotFound
		}
	}

	return r.getTransaction(ctx, userID, id)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) getTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ? AND t.user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color, icon, type FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, color, icon, type FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (store.User, error) {
	u := store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return store.User{}, store.ErrEmailTaken
		}
		return store.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (store.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email))))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (store.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM users WHERE id = ?", id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
