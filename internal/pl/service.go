package pl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rinori/backoffice/internal/shared"
)

// Service computes profit and loss views, memoized in redis. Entries expire
// by TTL; imports do not invalidate eagerly, so a view can lag one cache
// window behind the latest upload.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService constructs a new Service. cache may be nil to disable
// memoization.
func NewService(logger *slog.Logger, repo Repository, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Summary returns the range's P&L including ad spend and operating profit.
func (s *Service) Summary(ctx context.Context, fromYM, toYM string, channelID int64) (*Summary, error) {
	if err := validRange(fromYM, toYM); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("pl:summary:%s:%s:%d", fromYM, toYM, channelID)
	var cached Summary
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := s.compute(ctx, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *Service) compute(ctx context.Context, fromYM, toYM string, channelID int64) (*Summary, error) {
	summary, err := s.repo.Totals(ctx, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}

	// Ad expenses carry no channel, so they only enter the all-channels view.
	if channelID == 0 {
		adSpend, err := s.repo.AdSpendTotal(ctx, fromYM, toYM)
		if err != nil {
			return nil, err
		}
		summary.AdSpend = adSpend
	}
	summary.OperatingProfit = summary.GrossProfit - summary.AdSpend

	if summary.SalesExclTax > 0 {
		summary.CostRate = summary.Cost / summary.SalesExclTax * 100
		summary.GrossProfitRate = summary.GrossProfit / summary.SalesExclTax * 100
		summary.AdRate = summary.AdSpend / summary.SalesExclTax * 100
		summary.OperatingProfitRate = summary.OperatingProfit / summary.SalesExclTax * 100
	}
	return summary, nil
}

// Products returns the range's per-product breakdown, largest sales first.
func (s *Service) Products(ctx context.Context, fromYM, toYM string, channelID int64) ([]ProductPL, error) {
	if err := validRange(fromYM, toYM); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("pl:products:%s:%s:%d", fromYM, toYM, channelID)
	var cached []ProductPL
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	breakdown, err := s.repo.ProductBreakdown(ctx, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, breakdown)
	return breakdown, nil
}

// WithBudget pairs the range's actuals with its budgets. Ad figures are nil
// when a channel filter applies.
func (s *Service) WithBudget(ctx context.Context, fromYM, toYM string, channelID int64) (*BudgetComparison, error) {
	summary, err := s.Summary(ctx, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}

	gpBudget, err := s.repo.GrossProfitBudget(ctx, fromYM, toYM)
	if err != nil {
		return nil, err
	}

	cmp := &BudgetComparison{Summary: *summary, GrossProfitBudget: gpBudget}
	cmp.GrossProfitVariance = summary.GrossProfit - gpBudget
	if gpBudget > 0 {
		cmp.GrossProfitAchievementRate = round1(summary.GrossProfit / gpBudget * 100)
	}

	if channelID != 0 {
		return cmp, nil
	}

	adBudget, err := s.repo.AdBudgetTotal(ctx, fromYM, toYM)
	if err != nil {
		return nil, err
	}
	opBudget := gpBudget - adBudget

	cmp.AdBudget = &adBudget
	cmp.OperatingProfitBudget = &opBudget
	cmp.AdVariance = ptr(summary.AdSpend - adBudget)
	cmp.OperatingProfitVariance = ptr(summary.OperatingProfit - opBudget)
	if adBudget > 0 {
		cmp.AdAchievementRate = ptr(round1(summary.AdSpend / adBudget * 100))
	} else {
		cmp.AdAchievementRate = ptr(0.0)
	}
	if opBudget != 0 {
		cmp.OperatingProfitAchievementRate = ptr(round1(summary.OperatingProfit / opBudget * 100))
	} else {
		cmp.OperatingProfitAchievementRate = ptr(0.0)
	}
	return cmp, nil
}

// Trend returns single-month summaries for the most recent months, oldest
// first.
func (s *Service) Trend(ctx context.Context, channelID int64, months int) ([]Summary, error) {
	if months <= 0 || months > 36 {
		return nil, fmt.Errorf("pl: months must be between 1 and 36")
	}

	periods := shared.RecentPeriods(time.Now(), months)
	result := make([]Summary, 0, len(periods))
	for _, ym := range periods {
		summary, err := s.Summary(ctx, ym, ym, channelID)
		if err != nil {
			return nil, err
		}
		result = append(result, *summary)
	}
	return result, nil
}

// Warm precomputes the cache for the given months. Used by the scheduled
// warmup job.
func (s *Service) Warm(ctx context.Context, channelID int64, months int) error {
	_, err := s.Trend(ctx, channelID, months)
	return err
}

func validRange(fromYM, toYM string) error {
	if !shared.ValidYM(fromYM) || !shared.ValidYM(toYM) {
		return shared.ErrInvalidPeriod
	}
	if toYM < fromYM {
		return shared.ErrInvalidPeriod
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 {
	return &v
}

func (s *Service) cacheGet(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("pl cache write", slog.String("key", key), slog.Any("error", err))
	}
}
