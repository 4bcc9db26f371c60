package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/shared"
)

// Filter narrows product listings. Zero values mean "no restriction".
type Filter struct {
	Search string
	Type   ProductType
	Status ManagementStatus
}

// Repository defines persistence operations for the product master.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, code string) (*Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, code string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, asin, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.Code, &p.Name, &p.SalesPriceExclTax, &p.CostExclTax, &p.Type, &p.Status, &p.ASIN, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(product_code ILIKE $%d OR product_name ILIKE $%d)", len(args), len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("product_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("management_status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY product_code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, code string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_code = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Product) error {
	const query = `
		INSERT INTO products (product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, asin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	_, err := r.pool.Exec(ctx, query, p.Code, p.Name, p.SalesPriceExclTax, p.CostExclTax, p.Type, p.Status, p.ASIN, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p Product) error {
	const query = `
		UPDATE products
		SET product_name = $2, sales_price_excl_tax = $3, cost_excl_tax = $4, product_type = $5, management_status = $6, asin = $7, updated_at = $8
		WHERE product_code = $1`
	tag, err := r.pool.Exec(ctx, query, p.Code, p.Name, p.SalesPriceExclTax, p.CostExclTax, p.Type, p.Status, p.ASIN, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE product_code = $1`, code)
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
