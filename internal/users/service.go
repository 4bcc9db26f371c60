package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rinori/backoffice/internal/auth"
)

var (
	// ErrLastMaster blocks removing or demoting the only master account.
	ErrLastMaster = errors.New("at least one master account must remain")
)

// Service wraps user management business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, username, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if role != auth.RoleMaster && role != auth.RoleStaff {
		return nil, errors.New("role must be master or staff")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{Username: username, PasswordHash: string(hash), Role: role}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return errors.New("current password does not match")
	}
	if len(next) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// ResetPassword sets a new password without checking the old one. Master only.
func (s *Service) ResetPassword(ctx context.Context, id int64, next string) error {
	if len(next) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == auth.RoleMaster {
		remaining, err := s.masterCount(ctx)
		if err != nil {
			return err
		}
		if remaining <= 1 {
			return ErrLastMaster
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) masterCount(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range all {
		if u.Role == auth.RoleMaster {
			count++
		}
	}
	return count, nil
}
