package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/bsm/redislock"

	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/observability"
	"github.com/rinori/backoffice/internal/shared"
)

// ErrImportInProgress means another import for the same period and channel
// holds the lock.
var ErrImportInProgress = errors.New("importer: an import for this period and channel is already running")

// TaxRateSource resolves the consumption tax rate for a month.
type TaxRateSource interface {
	RateFor(ctx context.Context, ym string) (float64, error)
}

// Locker serializes import runs. Satisfied by *redislock.Client.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// Params describes one import request. ImportedBy is the authenticated user
// running the import; it is stamped on the history and every record.
type Params struct {
	TargetYM       string
	SalesChannelID int64
	Mode           Mode
	DataSource     DataSource
	Comment        string
	FileName       string
	File           io.Reader
	ImportedBy     int64
	// SkipUnregisteredASINs lets an Amazon import proceed past rows whose
	// parent ASIN matches no product. Without it such rows abort the run so
	// the caller can review them first.
	SkipUnregisteredASINs bool
}

// Service coordinates sales imports end to end: lock, decode, price,
// classify and persist in one transaction.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	rates   TaxRateSource
	locker  Locker
	metrics *observability.Metrics
	lockTTL time.Duration
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, repo Repository, rates TaxRateSource, locker Locker, metrics *observability.Metrics, lockTTL time.Duration) *Service {
	return &Service{logger: logger, repo: repo, rates: rates, locker: locker, metrics: metrics, lockTTL: lockTTL}
}

// Import runs one sales import. Nothing is written unless the whole file
// processes cleanly; the recorded history row reflects the rows actually
// inserted.
func (s *Service) Import(ctx context.Context, params Params) (*Result, error) {
	if !shared.ValidYM(params.TargetYM) {
		return nil, shared.ErrInvalidPeriod
	}
	if !ValidMode(params.Mode) {
		return nil, fmt.Errorf("%w, got %q", ErrUnknownMode, params.Mode)
	}
	if params.DataSource == "" {
		params.DataSource = DataSourceNE
	}
	if !ValidDataSource(params.DataSource) {
		return nil, fmt.Errorf("importer: unknown data source %q", params.DataSource)
	}
	if params.SalesChannelID <= 0 {
		return nil, errors.New("importer: sales channel is required")
	}
	exists, err := s.repo.ChannelExists(ctx, params.SalesChannelID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("importer: sales channel %d: %w", params.SalesChannelID, shared.ErrNotFound)
	}

	lock, err := s.locker.Obtain(ctx, shared.ImportLockKey(params.TargetYM, params.SalesChannelID), s.lockTTL, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrImportInProgress
		}
		return nil, fmt.Errorf("importer: obtain lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			s.logger.Warn("release import lock", slog.Any("error", err))
		}
	}()

	result, err := s.run(ctx, params)
	if err != nil {
		s.observe("failure", 0)
		return nil, err
	}
	s.observe("success", result.Inserted)
	s.logger.Info("sales import finished",
		slog.String("target_ym", params.TargetYM),
		slog.Int64("sales_channel_id", params.SalesChannelID),
		slog.String("mode", string(params.Mode)),
		slog.Int("inserted", result.Inserted),
		slog.Int("new_candidates", result.NewCandidates),
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, params Params) (*Result, error) {
	var (
		rows []Row
		err  error
	)
	if params.DataSource == DataSourceAmazon {
		rows, err = ParseAmazonCSV(params.File)
	} else {
		rows, err = ParseSalesCSV(params.File)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("importer: file contains no usable rows")
	}

	// The rate must exist before anything is written; a month without a
	// configured rate fails the import outright.
	rate, err := s.rates.RateFor(ctx, params.TargetYM)
	if err != nil {
		return nil, err
	}

	master, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	classifier := NewClassifier(master)

	result := &Result{TotalRows: len(rows)}
	if params.DataSource == DataSourceAmazon {
		result.UnregisteredASINs = unregisteredASINs(classifier, rows)
		if len(result.UnregisteredASINs) > 0 && !params.SkipUnregisteredASINs {
			result.Message = fmt.Sprintf("%d unregistered parent ASINs detected, register them on the product master or re-run with skip confirmed", len(result.UnregisteredASINs))
			return result, nil
		}
	}

	saleDate := time.Now().UTC()
	unmatched := make(map[string]struct{})
	err = s.repo.ImportTx(ctx, func(ctx context.Context, tx TxRepository) error {
		historyID, err := tx.CreateHistory(ctx, History{
			TargetYM:       params.TargetYM,
			SalesChannelID: params.SalesChannelID,
			FileName:       params.FileName,
			Mode:           params.Mode,
			DataSource:     params.DataSource,
			Comment:        params.Comment,
			RecordCount:    len(rows),
			ImportedBy:     params.ImportedBy,
		})
		if err != nil {
			return err
		}
		result.HistoryID = historyID

		if params.Mode == ModeOverwrite {
			if _, err := tx.DeleteSalesRecords(ctx, params.TargetYM, params.SalesChannelID); err != nil {
				return err
			}
		}

		for _, row := range rows {
			if row.Quantity == 0 && row.AmountInclTax == 0 {
				result.SkippedEmpty++
				continue
			}

			var (
				code    string
				outcome Outcome
				product *products.Product
			)
			if params.DataSource == DataSourceAmazon {
				outcome, product = classifier.ClassifyASIN(row.SKU)
				if outcome == Unmatched {
					// Already reported through UnregisteredASINs; the
					// caller confirmed the skip.
					continue
				}
				code = product.Code
			} else {
				code = NormalizeSKU(row.SKU)
				outcome, product = classifier.Classify(code)
			}

			switch outcome {
			case MatchedManaged:
				amounts := CalcAmounts(row.AmountInclTax, row.Quantity, rate, product.CostExclTax)
				err := tx.InsertSalesRecord(ctx, SalesRecord{
					ImportHistoryID:   historyID,
					TargetYM:          params.TargetYM,
					SalesChannelID:    params.SalesChannelID,
					ProductCode:       code,
					SKU:               row.SKU,
					SaleDate:          saleDate,
					Quantity:          row.Quantity,
					SalesAmountExcl:   amounts.SalesExclTax,
					CostAmount:        amounts.Cost,
					GrossProfitAmount: amounts.GrossProfit,
					CreatedBy:         params.ImportedBy,
				})
				if err != nil {
					return err
				}
				result.Inserted++
			case MatchedUnmanaged:
				result.SkippedUnmanaged++
			case Unmatched:
				created, err := tx.UpsertCandidate(ctx, code, row.SKU, row.Name)
				if err != nil {
					return err
				}
				if created {
					result.NewCandidates++
				}
				unmatched[code] = struct{}{}
			}
		}

		return tx.FinalizeHistory(ctx, result.HistoryID, result.Inserted)
	})
	if err != nil {
		return nil, err
	}

	for code := range unmatched {
		result.UnmatchedCodes = append(result.UnmatchedCodes, code)
	}
	sort.Strings(result.UnmatchedCodes)
	if result.Inserted == 0 && len(result.UnmatchedCodes) > 0 {
		result.Message = fmt.Sprintf("no records inserted: %d unregistered product codes detected, review the candidates", len(result.UnmatchedCodes))
	}
	return result, nil
}

// unregisteredASINs lists the distinct parent ASINs that match no product,
// first-seen order, with the row title as a registration hint.
func unregisteredASINs(classifier *Classifier, rows []Row) []UnregisteredASIN {
	seen := make(map[string]struct{})
	var out []UnregisteredASIN
	for _, row := range rows {
		if outcome, _ := classifier.ClassifyASIN(row.SKU); outcome != Unmatched {
			continue
		}
		if _, dup := seen[row.SKU]; dup {
			continue
		}
		seen[row.SKU] = struct{}{}
		out = append(out, UnregisteredASIN{ASIN: row.SKU, Title: row.Name})
	}
	return out
}

func (s *Service) observe(outcome string, inserted int) {
	if s.metrics != nil {
		s.metrics.ObserveImport(outcome, inserted)
	}
}

// ListHistories returns import runs, newest first.
func (s *Service) ListHistories(ctx context.Context, filter HistoryFilter) ([]History, error) {
	if filter.TargetYM != "" && !shared.ValidYM(filter.TargetYM) {
		return nil, shared.ErrInvalidPeriod
	}
	return s.repo.ListHistories(ctx, filter)
}

// DeleteHistory removes an import run together with its sales records.
func (s *Service) DeleteHistory(ctx context.Context, id int64) error {
	return s.repo.DeleteHistory(ctx, id)
}

// ReassignChannel moves a run and its records to a different channel, for
// fixing a file uploaded against the wrong storefront.
func (s *Service) ReassignChannel(ctx context.Context, id, salesChannelID int64) error {
	if salesChannelID <= 0 {
		return errors.New("importer: sales channel is required")
	}
	return s.repo.ReassignHistoryChannel(ctx, id, salesChannelID)
}
