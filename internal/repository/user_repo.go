// internal/repository/user_repo.go
package repository

import (
	"context"

	"cardflow/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines the interface for the user directory.
type UserRepository interface {
	// Insert adds a new user.
	Insert(ctx context.Context, q DBExecutor, user *domain.User) error
	// FindByID retrieves a user by id, util.ErrNotFound if absent.
	FindByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.User, error)
	// Exists reports whether the user id is known.
	Exists(ctx context.Context, q DBExecutor, id uuid.UUID) (bool, error)
}
