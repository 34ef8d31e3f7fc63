// internal/repository/card_repo.go
package repository

import (
	"context"
	"time"

	"cardflow/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardRepository defines the interface for card data operations. All
// mutating operations are atomic with respect to concurrent callers on
// the same card id; the balance guard on Withdraw is the authoritative
// protection against a negative balance.
type CardRepository interface {
	// Insert persists a new card and assigns its id. Returns
	// util.ErrConflict if the number is already stored.
	Insert(ctx context.Context, q DBExecutor, card *domain.Card) error
	// FindByID retrieves a card by id, util.ErrNotFound if absent.
	FindByID(ctx context.Context, q DBExecutor, id int64) (*domain.Card, error)
	// FindByNumber retrieves a card by its plaintext number.
	FindByNumber(ctx context.Context, q DBExecutor, number string) (*domain.Card, error)
	// FindByIDAndOwner retrieves a card only when it belongs to the
	// owner. A card held by someone else is reported as not found,
	// never as a distinct condition.
	FindByIDAndOwner(ctx context.Context, q DBExecutor, id int64, ownerID uuid.UUID) (*domain.Card, error)
	// ListByOwner returns one page of the owner's cards.
	ListByOwner(ctx context.Context, q DBExecutor, ownerID uuid.UUID, page Page) (*Paged, error)
	// ListAll returns one page over all cards.
	ListAll(ctx context.Context, q DBExecutor, page Page) (*Paged, error)
	// BulkExpire marks every non-expired card whose expiry month is
	// strictly before now as EXPIRED. Returns the affected count.
	BulkExpire(ctx context.Context, q DBExecutor, now time.Time) (int64, error)
	// BulkSetStatus applies one status to a set of ids atomically.
	BulkSetStatus(ctx context.Context, q DBExecutor, ids []int64, status domain.CardStatus) (int64, error)
	// Deposit atomically adds amount to the card's balance. Returns
	// the number of rows affected; zero means the card is gone.
	Deposit(ctx context.Context, q DBExecutor, id int64, amount decimal.Decimal) (int64, error)
	// Withdraw atomically subtracts amount, guarded by
	// balance >= amount. Zero rows means the card is missing or the
	// guard failed; the caller must have validated existence already.
	Withdraw(ctx context.Context, q DBExecutor, id int64, amount decimal.Decimal) (int64, error)
	// DeleteByID removes the card.
	DeleteByID(ctx context.Context, q DBExecutor, id int64) error
}
