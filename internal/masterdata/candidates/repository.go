package candidates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/platform/db"
	"github.com/rinori/backoffice/internal/shared"
)

// Registration promotes a candidate into the product master.
type Registration struct {
	CandidateID       int64                `json:"candidate_id" validate:"required"`
	ProductName       string               `json:"product_name" validate:"required"`
	SalesPriceExclTax float64              `json:"sales_price_excl_tax" validate:"gte=0"`
	CostExclTax       float64              `json:"cost_excl_tax" validate:"gte=0"`
	ProductType       products.ProductType `json:"product_type" validate:"required"`
}

// Repository defines persistence operations for new-product candidates.
type Repository interface {
	List(ctx context.Context, status Status) ([]Candidate, error)
	Get(ctx context.Context, id int64) (*Candidate, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	BulkRegister(ctx context.Context, regs []Registration) (int, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const candidateColumns = `id, product_code, sample_sku, sample_name, status, created_at, updated_at`

func (r *repository) List(ctx context.Context, status Status) ([]Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM new_product_candidates`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY product_code, sample_sku`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.ProductCode, &c.SampleSKU, &c.SampleName, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM new_product_candidates WHERE id = $1`
	var c Candidate
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.ProductCode, &c.SampleSKU, &c.SampleName, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE new_product_candidates SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// BulkRegister creates a managed product for each registration and marks the
// candidate registered, all in one transaction. A duplicate product code
// aborts the whole batch.
func (r *repository) BulkRegister(ctx context.Context, regs []Registration) (int, error) {
	registered := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, reg := range regs {
			var code string
			err := tx.QueryRow(ctx,
				`SELECT product_code FROM new_product_candidates WHERE id = $1 AND status = $2`,
				reg.CandidateID, StatusPending).Scan(&code)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("candidates: candidate %d: %w", reg.CandidateID, shared.ErrNotFound)
				}
				return err
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO products (product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
				code, reg.ProductName, reg.SalesPriceExclTax, reg.CostExclTax, reg.ProductType, products.StatusManaged, now)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("candidates: product %s: %w", code, shared.ErrConflict)
				}
				return err
			}

			// Every candidate sharing the parent code is resolved by one
			// registration, regardless of which SKU variant was selected.
			if _, err := tx.Exec(ctx,
				`UPDATE new_product_candidates SET status = $1, updated_at = $2 WHERE product_code = $3 AND status = $4`,
				StatusRegistered, now, code, StatusPending); err != nil {
				return err
			}
			registered++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return registered, nil
}

// DeleteResolvedBefore purges registered and ignored candidates older than
// cutoff. Used by the scheduled cleanup job.
func (r *repository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM new_product_candidates WHERE status IN ($1, $2) AND updated_at < $3`,
		StatusRegistered, StatusIgnored, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
