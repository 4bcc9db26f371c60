package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rinori/backoffice/internal/masterdata/products"
)

// Service wraps candidate review business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, status Status) ([]Candidate, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("unknown candidate status %q", status)
	}
	return s.repo.List(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown candidate status %q", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// BulkRegister promotes pending candidates to managed products. The whole
// batch succeeds or fails together.
func (s *Service) BulkRegister(ctx context.Context, regs []Registration) (int, error) {
	if len(regs) == 0 {
		return 0, errors.New("at least one registration is required")
	}
	for i := range regs {
		regs[i].ProductName = strings.TrimSpace(regs[i].ProductName)
		if regs[i].ProductName == "" {
			return 0, fmt.Errorf("registration for candidate %d: product name is required", regs[i].CandidateID)
		}
		if regs[i].SalesPriceExclTax < 0 || regs[i].CostExclTax < 0 {
			return 0, fmt.Errorf("registration for candidate %d: amounts must not be negative", regs[i].CandidateID)
		}
		if regs[i].ProductType != products.TypeOwnBrand && regs[i].ProductType != products.TypePurchased {
			return 0, fmt.Errorf("registration for candidate %d: product type must be own or purchased", regs[i].CandidateID)
		}
	}
	return s.repo.BulkRegister(ctx, regs)
}

// CleanupResolved removes registered and ignored candidates untouched for the
// given retention window.
func (s *Service) CleanupResolved(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteResolvedBefore(ctx, time.Now().UTC().Add(-retention))
}
