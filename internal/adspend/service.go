package adspend

import (
	"context"
	"errors"
	"strings"

	"github.com/rinori/backoffice/internal/shared"
)

// Service wraps ad spend business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}
	return s.repo.CreateCategory(ctx, name)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name is required")
	}
	return s.repo.UpdateCategory(ctx, id, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	if filter.FromYM != "" && !shared.ValidYM(filter.FromYM) {
		return nil, shared.ErrInvalidPeriod
	}
	if filter.ToYM != "" && !shared.ValidYM(filter.ToYM) {
		return nil, shared.ErrInvalidPeriod
	}
	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) CreateExpense(ctx context.Context, e Expense) (int64, error) {
	if err := validateExpense(&e); err != nil {
		return 0, err
	}
	return s.repo.CreateExpense(ctx, e)
}

func (s *Service) UpdateExpense(ctx context.Context, e Expense) error {
	if err := validateExpense(&e); err != nil {
		return err
	}
	return s.repo.UpdateExpense(ctx, e)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.repo.DeleteExpense(ctx, id)
}

func validateExpense(e *Expense) error {
	if e.ExpenseDate.IsZero() {
		return errors.New("expense date is required")
	}
	if e.AdCategoryID <= 0 {
		return errors.New("ad category is required")
	}
	if e.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	e.Memo = strings.TrimSpace(e.Memo)
	return nil
}
