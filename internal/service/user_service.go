// internal/service/user_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"cardflow/internal/domain"
	"cardflow/internal/repository"
	"cardflow/internal/util"

	"github.com/google/uuid"
)

// UserService is the user directory: card holders are registered here
// and the card service consults it for ownership checks.
type UserService interface {
	Create(ctx context.Context, name string) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type userService struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(dbExecutor repository.DBExecutor, userRepo repository.UserRepository) UserService {
	return &userService{dbExecutor: dbExecutor, userRepo: userRepo}
}

func (s *userService) Create(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.ErrInvalidInput
	}
	user := domain.NewUser(name)
	if err := s.userRepo.Insert(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, s.dbExecutor, id)
}

func (s *userService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.userRepo.Exists(ctx, s.dbExecutor, id)
}
