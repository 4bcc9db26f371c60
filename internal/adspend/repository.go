package adspend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/shared"
)

// Repository defines persistence operations for ad categories and expenses.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error

	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	CreateExpense(ctx context.Context, e Expense) (int64, error)
	UpdateExpense(ctx context.Context, e Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM ad_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ad_categories (name, created_at, updated_at) VALUES ($1, $2, $2)
		 RETURNING id, name, created_at, updated_at`,
		name, time.Now().UTC()).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ad_categories SET name = $2, updated_at = $3 WHERE id = $1`,
		id, name, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ad_categories WHERE id = $1`, id)
	if err != nil {
		// Expenses and budgets reference categories; refuse to orphan them.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	query := `
		SELECT e.id, e.expense_date, e.amount, e.ad_category_id, c.name, e.memo, e.created_by, e.created_at, e.updated_at
		FROM ad_expenses e
		JOIN ad_categories c ON c.id = e.ad_category_id`
	var (
		conds []string
		args  []any
	)
	if filter.FromYM != "" {
		start, _, err := shared.MonthBounds(filter.FromYM)
		if err != nil {
			return nil, err
		}
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("e.expense_date >= $%d", len(args)))
	}
	if filter.ToYM != "" {
		_, next, err := shared.MonthBounds(filter.ToYM)
		if err != nil {
			return nil, err
		}
		args = append(args, next)
		conds = append(conds, fmt.Sprintf("e.expense_date < $%d", len(args)))
	}
	if filter.AdCategoryID != 0 {
		args = append(args, filter.AdCategoryID)
		conds = append(conds, fmt.Sprintf("e.ad_category_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.expense_date DESC, e.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.ExpenseDate, &e.Amount, &e.AdCategoryID, &e.CategoryName, &e.Memo, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *repository) CreateExpense(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ad_expenses (expense_date, amount, ad_category_id, memo, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		e.ExpenseDate, e.Amount, e.AdCategoryID, e.Memo, e.CreatedBy, time.Now().UTC()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateExpense(ctx context.Context, e Expense) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ad_expenses
		 SET expense_date = $2, amount = $3, ad_category_id = $4, memo = $5, updated_at = $6
		 WHERE id = $1`,
		e.ID, e.ExpenseDate, e.Amount, e.AdCategoryID, e.Memo, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ad_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
