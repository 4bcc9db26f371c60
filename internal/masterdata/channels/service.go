package channels

import (
	"context"
	"errors"
	"strings"
)

// Service wraps sales channel business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Channel, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (*Channel, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("channel name is required")
	}
	id, err := s.repo.Create(ctx, Channel{Name: name, Active: true})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, name string, active bool) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("channel name is required")
	}
	if err := s.repo.Update(ctx, Channel{ID: id, Name: name, Active: active}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
