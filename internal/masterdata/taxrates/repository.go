package taxrates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/shared"
)

// Repository defines persistence operations for tax rates.
type Repository interface {
	List(ctx context.Context) ([]TaxRate, error)
	Create(ctx context.Context, t TaxRate) error
	Update(ctx context.Context, t TaxRate) error
	Delete(ctx context.Context, startYM string) error
	// RateFor returns the rate with the greatest start month not after ym.
	RateFor(ctx context.Context, ym string) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]TaxRate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT start_ym, rate, created_at, updated_at FROM tax_rates ORDER BY start_ym DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TaxRate
	for rows.Next() {
		var t TaxRate
		if err := rows.Scan(&t.StartYM, &t.Rate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, t TaxRate) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tax_rates (start_ym, rate, created_at, updated_at) VALUES ($1, $2, $3, $3)`,
		t.StartYM, t.Rate, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, t TaxRate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tax_rates SET rate = $2, updated_at = $3 WHERE start_ym = $1`,
		t.StartYM, t.Rate, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, startYM string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_rates WHERE start_ym = $1`, startYM)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) RateFor(ctx context.Context, ym string) (float64, error) {
	var rate float64
	err := r.pool.QueryRow(ctx,
		`SELECT rate FROM tax_rates WHERE start_ym <= $1 ORDER BY start_ym DESC LIMIT 1`,
		ym).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return rate, nil
}
