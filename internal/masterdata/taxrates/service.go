package taxrates

import (
	"context"
	"errors"
	"fmt"

	"github.com/rinori/backoffice/internal/shared"
)

// Service wraps tax rate business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]TaxRate, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, t TaxRate) error {
	if err := validate(t); err != nil {
		return err
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Update(ctx context.Context, t TaxRate) error {
	if err := validate(t); err != nil {
		return err
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, startYM string) error {
	if !shared.ValidYM(startYM) {
		return shared.ErrInvalidPeriod
	}
	return s.repo.Delete(ctx, startYM)
}

// RateFor resolves the tax rate effective in the given month. Months before
// the earliest configured rate resolve to shared.ErrNotFound; callers must
// treat that as a hard failure rather than assuming a default.
func (s *Service) RateFor(ctx context.Context, ym string) (float64, error) {
	if !shared.ValidYM(ym) {
		return 0, shared.ErrInvalidPeriod
	}
	rate, err := s.repo.RateFor(ctx, ym)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, fmt.Errorf("taxrates: no rate configured for %s: %w", ym, err)
		}
		return 0, err
	}
	return rate, nil
}

func validate(t TaxRate) error {
	if !shared.ValidYM(t.StartYM) {
		return shared.ErrInvalidPeriod
	}
	if t.Rate < 0 || t.Rate >= 1 {
		return errors.New("rate must be a fraction between 0 and 1")
	}
	return nil
}
