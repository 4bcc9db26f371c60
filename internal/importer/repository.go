package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/platform/db"
	"github.com/rinori/backoffice/internal/shared"
)

// TxRepository exposes the write operations of one import run. Every method
// runs inside the transaction opened by ImportTx.
type TxRepository interface {
	CreateHistory(ctx context.Context, h History) (int64, error)
	FinalizeHistory(ctx context.Context, id int64, recordCount int) error
	DeleteSalesRecords(ctx context.Context, targetYM string, salesChannelID int64) (int64, error)
	InsertSalesRecord(ctx context.Context, rec SalesRecord) error
	UpsertCandidate(ctx context.Context, productCode, sampleSKU, sampleName string) (bool, error)
}

// Repository defines persistence operations for sales imports.
type Repository interface {
	// ImportTx runs fn inside one transaction; a returned error rolls
	// everything back, history row included.
	ImportTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	LoadProducts(ctx context.Context) ([]products.Product, error)
	// ChannelExists reports whether a sales channel is registered.
	ChannelExists(ctx context.Context, id int64) (bool, error)
	ListHistories(ctx context.Context, filter HistoryFilter) ([]History, error)
	GetHistory(ctx context.Context, id int64) (*History, error)
	// DeleteHistory removes the history and the sales records it produced.
	DeleteHistory(ctx context.Context, id int64) error
	// ReassignHistoryChannel moves a history and its records to another
	// channel.
	ReassignHistoryChannel(ctx context.Context, id, salesChannelID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ImportTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) LoadProducts(ctx context.Context) ([]products.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_code, product_name, sales_price_excl_tax, cost_excl_tax, product_type, management_status, asin, created_at, updated_at FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []products.Product
	for rows.Next() {
		var p products.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.SalesPriceExclTax, &p.CostExclTax, &p.Type, &p.Status, &p.ASIN, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) ChannelExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sales_channels WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

const historyColumns = `id, target_ym, sales_channel_id, file_name, mode, data_source, comment, record_count, imported_by, imported_at`

func (r *repository) ListHistories(ctx context.Context, filter HistoryFilter) ([]History, error) {
	query := `SELECT ` + historyColumns + ` FROM import_histories`
	var (
		conds []string
		args  []any
	)
	if filter.TargetYM != "" {
		args = append(args, filter.TargetYM)
		conds = append(conds, fmt.Sprintf("target_ym = $%d", len(args)))
	}
	if filter.SalesChannelID != 0 {
		args = append(args, filter.SalesChannelID)
		conds = append(conds, fmt.Sprintf("sales_channel_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY imported_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []History
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.TargetYM, &h.SalesChannelID, &h.FileName, &h.Mode, &h.DataSource, &h.Comment, &h.RecordCount, &h.ImportedBy, &h.ImportedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (r *repository) GetHistory(ctx context.Context, id int64) (*History, error) {
	var h History
	err := r.pool.QueryRow(ctx,
		`SELECT `+historyColumns+` FROM import_histories WHERE id = $1`,
		id).Scan(&h.ID, &h.TargetYM, &h.SalesChannelID, &h.FileName, &h.Mode, &h.DataSource, &h.Comment, &h.RecordCount, &h.ImportedBy, &h.ImportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *repository) DeleteHistory(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sales_records WHERE import_history_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM import_histories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) ReassignHistoryChannel(ctx context.Context, id, salesChannelID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE import_histories SET sales_channel_id = $2 WHERE id = $1`, id, salesChannelID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE sales_records SET sales_channel_id = $2 WHERE import_history_id = $1`, id, salesChannelID)
		return err
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) CreateHistory(ctx context.Context, h History) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO import_histories (target_ym, sales_channel_id, file_name, mode, data_source, comment, record_count, imported_by, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		h.TargetYM, h.SalesChannelID, h.FileName, h.Mode, h.DataSource, h.Comment, h.RecordCount, h.ImportedBy, time.Now().UTC()).Scan(&id)
	return id, err
}

func (t *txRepository) FinalizeHistory(ctx context.Context, id int64, recordCount int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE import_histories SET record_count = $2 WHERE id = $1`, id, recordCount)
	return err
}

func (t *txRepository) DeleteSalesRecords(ctx context.Context, targetYM string, salesChannelID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM sales_records WHERE target_ym = $1 AND sales_channel_id = $2`,
		targetYM, salesChannelID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txRepository) InsertSalesRecord(ctx context.Context, rec SalesRecord) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO sales_records (import_history_id, target_ym, sales_channel_id, product_code, sku, sale_date, quantity, sales_amount_excl_tax, cost_amount, gross_profit_amount, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ImportHistoryID, rec.TargetYM, rec.SalesChannelID, rec.ProductCode, rec.SKU, rec.SaleDate,
		rec.Quantity, rec.SalesAmountExcl, rec.CostAmount, rec.GrossProfitAmount, rec.CreatedBy, time.Now().UTC())
	return err
}

// UpsertCandidate records an unknown code once per (code, SKU) pair.
// Re-encounters only refresh the sample name. Returns true when a new row
// was created.
func (t *txRepository) UpsertCandidate(ctx context.Context, productCode, sampleSKU, sampleName string) (bool, error) {
	var inserted bool
	err := t.tx.QueryRow(ctx,
		`INSERT INTO new_product_candidates (product_code, sample_sku, sample_name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, 'pending', $4, $4)
		 ON CONFLICT (product_code, sample_sku)
		 DO UPDATE SET sample_name = EXCLUDED.sample_name, updated_at = EXCLUDED.updated_at
		 RETURNING (xmax = 0)`,
		productCode, sampleSKU, sampleName, time.Now().UTC()).Scan(&inserted)
	return inserted, err
}
