package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
)

// Service defines user account operations.
type Service interface {
	Register(ctx context.Context, email, name, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, params request.ListParams) ([]*User, int, error)
	Update(ctx context.Context, id string, name *string, isSystemAdmin *bool) (*User, error)
	IsSystemAdmin(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
}

// NewService creates the user service.
func NewService(repo Repository, hasher auth.PasswordHasher) Service {
	return &service{repo: repo, hasher: hasher}
}

func (s *service) Register(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:    uuid.NewString(),
		Email: normalizeEmail(email),
		Name:  name,
	}
	if err := s.repo.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, ErrInvalidLogin
	}

	hash, err := s.repo.GetPasswordHash(ctx, u.ID)
	if err != nil {
		return nil, ErrInvalidLogin
	}
	if err := s.hasher.Compare(hash, password); err != nil {
		return nil, ErrInvalidLogin
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, params request.ListParams) ([]*User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *service) Update(ctx context.Context, id string, name *string, isSystemAdmin *bool) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		u.Name = *name
	}
	if isSystemAdmin != nil {
		u.IsSystemAdmin = *isSystemAdmin
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) IsSystemAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsSystemAdmin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
