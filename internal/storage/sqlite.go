package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Dates are stored as RFC 3339 text so lexicographic ORDER BY matches
// chronological order.
const dateFormat = time.RFC3339

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

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, balance_cents) VALUES (?, ?)`,
		a.Name, a.Balance.Cents)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance_cents FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Balance.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.NewNotFoundError("account %d not found", id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance_cents FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (account_id, name, parent_id) VALUES (?, ?, ?)`,
		c.AccountID, c.Name, nullableID(c.ParentID))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var (
		c      core.Category
		parent sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, parent_id FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.AccountID, &c.Name, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NewNotFoundError("category %d not found", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET account_id = ?, name = ?, parent_id = ? WHERE id = ?`,
		c.AccountID, c.Name, nullableID(c.ParentID), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "category", id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, account_id, name, parent_id FROM categories ORDER BY id`)
}

func (r *SQLiteRepository) ListCategoriesByAccount(ctx context.Context, accountID int64) ([]core.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, account_id, name, parent_id FROM categories WHERE account_id = ? ORDER BY id`,
		accountID)
}

func (r *SQLiteRepository) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c      core.Category
			parent sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if parent.Valid {
			c.ParentID = &parent.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (account_id, category_id, type, amount_cents, date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents,
		t.Date.UTC().Format(dateFormat), t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var (
		t       core.Transaction
		rawDate string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, category_id, type, amount_cents, date, description
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount.Cents, &rawDate, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NewNotFoundError("transaction %d not found", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if t.Date, err = time.Parse(dateFormat, rawDate); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET account_id = ?, category_id = ?, type = ?, amount_cents = ?, date = ?, description = ?
		 WHERE id = ?`,
		t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents,
		t.Date.UTC().Format(dateFormat), t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, account_id, category_id, type, amount_cents, date, description
		 FROM transactions ORDER BY date, id`)
}

func (r *SQLiteRepository) ListTransactionsByAccount(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, account_id, category_id, type, amount_cents, date, description
		 FROM transactions WHERE account_id = ? ORDER BY date, id`,
		accountID)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			rawDate string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount.Cents, &rawDate, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(dateFormat, rawDate); err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (account_id, limit_cents, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		b.AccountID, b.Limit.Cents,
		b.Start.UTC().Format(dateFormat), b.End.UTC().Format(dateFormat),
		b.CreatedAt.UTC().Format(dateFormat))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgetsByAccount(ctx context.Context, accountID int64) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		`SELECT id, account_id, limit_cents, start_date, end_date, created_at
		 FROM budgets WHERE account_id = ? ORDER BY id`,
		accountID)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		`SELECT id, account_id, limit_cents, start_date, end_date, created_at
		 FROM budgets ORDER BY id`)
}

func (r *SQLiteRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b                   core.Budget
			start, end, created string
		)
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Limit.Cents, &start, &end, &created); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Start, err = time.Parse(dateFormat, start); err != nil {
			return nil, fmt.Errorf("parse budget start: %w", err)
		}
		if b.End, err = time.Parse(dateFormat, end); err != nil {
			return nil, fmt.Errorf("parse budget end: %w", err)
		}
		if b.CreatedAt, err = time.Parse(dateFormat, created); err != nil {
			return nil, fmt.Errorf("parse budget created_at: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", kind, err)
	}
	if n == 0 {
		return core.NewNotFoundError("%s %d not found", kind, id)
	}
	return nil
}
