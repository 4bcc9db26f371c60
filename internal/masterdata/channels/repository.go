package channels

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/shared"
)

// Repository defines persistence operations for sales channels.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Channel, error)
	Get(ctx context.Context, id int64) (*Channel, error)
	Create(ctx context.Context, c Channel) (int64, error)
	Update(ctx context.Context, c Channel) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Channel, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM sales_channels`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Channel, error) {
	var c Channel
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active, created_at, updated_at FROM sales_channels WHERE id = $1`,
		id).Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Channel) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sales_channels (name, active, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		c.Name, c.Active, time.Now().UTC()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, c Channel) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales_channels SET name = $2, active = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.Active, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
