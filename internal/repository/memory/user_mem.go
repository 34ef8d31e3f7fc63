// internal/repository/memory/user_mem.go
package memory

import (
	"context"
	"sync"

	"cardflow/internal/domain"
	"cardflow/internal/repository"
	"cardflow/internal/util"

	"github.com/google/uuid"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

// NewUserRepository returns an empty in-memory user directory.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (r *UserRepository) Insert(ctx context.Context, _ repository.DBExecutor, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, _ repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) Exists(ctx context.Context, _ repository.DBExecutor, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}
