package products

import (
	"context"
	"errors"
	"strings"
)

// Service wraps product master business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, code string) (*Product, error) {
	return s.repo.Get(ctx, code)
}

func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.Code)
}

func (s *Service) Update(ctx context.Context, p Product) (*Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.Code)
}

func (s *Service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}

func validate(p *Product) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	p.ASIN = strings.ToUpper(strings.TrimSpace(p.ASIN))
	if p.Code == "" {
		return errors.New("product code is required")
	}
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.SalesPriceExclTax < 0 {
		return errors.New("sales price must not be negative")
	}
	if p.CostExclTax < 0 {
		return errors.New("cost must not be negative")
	}
	if p.Type != TypeOwnBrand && p.Type != TypePurchased {
		return errors.New("product type must be own or purchased")
	}
	if p.Status != StatusManaged && p.Status != StatusUnmanaged {
		return errors.New("management status must be managed or unmanaged")
	}
	return nil
}
