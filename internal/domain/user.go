// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a card holder in the user directory.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewUser creates a new User instance with a generated id.
func NewUser(name string) *User {
	return &User{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
