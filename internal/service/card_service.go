// internal/service/card_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardflow/internal/cardnum"
	"cardflow/internal/domain"
	"cardflow/internal/queue"
	"cardflow/internal/repository"
	"cardflow/internal/util"
	"cardflow/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// insertAttempts bounds the retries on a generated-number collision.
// Collisions are astronomically rare; the loop exists so one does not
// surface as a failed creation.
const insertAttempts = 3

// CardService defines the interface for the card ledger business logic.
type CardService interface {
	GetAll(ctx context.Context, page repository.Page) (*repository.Paged, error)
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
	GetByNumber(ctx context.Context, number string) (*domain.Card, error)
	GetCardsOfUser(ctx context.Context, ownerID uuid.UUID, page repository.Page) (*repository.Paged, error)
	Create(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error)
	SetStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error)
	AddToBlockQueue(ctx context.Context, id int64) error
	BlockAllRequested(ctx context.Context) (int64, error)
	Expire(ctx context.Context) (int64, error)
	GetBalance(ctx context.Context, id int64, ownerID uuid.UUID) (decimal.Decimal, error)
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) error
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) error
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error
	Delete(ctx context.Context, id int64) (*domain.Card, error)
}

// cardService implements the CardService interface. Status checks
// before money movement are a fast-fail optimization; the store's
// atomic balance guards are the authoritative protection.
type cardService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional operations (e.g., *sqlx.DB)
	cardRepo   repository.CardRepository
	userRepo   repository.UserRepository
	generator  *cardnum.Generator
	blockQueue *queue.BlockQueue
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	now        func() time.Time
}

// NewCardService creates a new instance of CardService.
func NewCardService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	cardRepo repository.CardRepository,
	userRepo repository.UserRepository,
	generator *cardnum.Generator,
	blockQueue *queue.BlockQueue,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	now func() time.Time,
) CardService {
	if now == nil {
		now = time.Now
	}
	return &cardService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		cardRepo:   cardRepo,
		userRepo:   userRepo,
		generator:  generator,
		blockQueue: blockQueue,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		now:        now,
	}
}

// GetAll returns one page over all cards.
func (s *cardService) GetAll(ctx context.Context, page repository.Page) (*repository.Paged, error) {
	return s.cardRepo.ListAll(ctx, s.dbExecutor, page)
}

// GetByID returns the card or util.ErrNotFound.
func (s *cardService) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	return s.cardRepo.FindByID(ctx, s.dbExecutor, id)
}

// GetByNumber returns the card matching the plaintext number.
func (s *cardService) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	return s.cardRepo.FindByNumber(ctx, s.dbExecutor, number)
}

// GetCardsOfUser lists an owner's cards, failing with util.ErrNotFound
// when the owner is unknown to the user directory.
func (s *cardService) GetCardsOfUser(ctx context.Context, ownerID uuid.UUID, page repository.Page) (*repository.Paged, error) {
	exists, err := s.userRepo.Exists(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get cards of user: failed to check owner %s: %w", ownerID, err)
	}
	if !exists {
		return nil, fmt.Errorf("get cards of user: owner %s: %w", ownerID, util.ErrNotFound)
	}
	return s.cardRepo.ListByOwner(ctx, s.dbExecutor, ownerID, page)
}

// Create issues a new card for the owner: a fresh structurally valid
// number, ACTIVE status, zero balance, five-year expiry. The returned
// card carries the real number; it is shown to the creator exactly
// once.
func (s *cardService) Create(ctx context.Context, ownerID uuid.UUID) (*domain.Card, error) {
	exists, err := s.userRepo.Exists(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create card: failed to check owner %s: %w", ownerID, err)
	}
	if !exists {
		return nil, fmt.Errorf("create card: owner %s: %w", ownerID, util.ErrNotFound)
	}

	var lastErr error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		number, _ := s.generator.GenerateRandom()
		card := domain.NewCard(number, ownerID, s.now())
		if err := s.cardRepo.Insert(ctx, s.dbExecutor, card); err != nil {
			if errors.Is(err, util.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("create card: %w", err)
		}
		return card, nil
	}
	return nil, fmt.Errorf("create card: exhausted number generation attempts: %w", lastErr)
}

// SetStatus applies an administrative status change. EXPIRED is
// terminal; requesting any other status on an expired card fails with
// util.ErrInvalidCard. Re-applying the current status succeeds.
func (s *cardService) SetStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("set status: card %d: %w", id, err)
	}
	if card.Status != status && !card.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("set status: card %d is %s: %w", id, card.Status, util.ErrInvalidCard)
	}

	affected, err := s.cardRepo.BulkSetStatus(ctx, s.dbExecutor, []int64{id}, status)
	if err != nil {
		return nil, fmt.Errorf("set status: card %d: %w", id, err)
	}
	if affected == 0 && card.Status != status {
		return nil, fmt.Errorf("set status: card %d changed underneath: %w", id, util.ErrNotAccessible)
	}
	card.ApplyStatus(status)
	return card, nil
}

// AddToBlockQueue stages a card for the next batch block. Cards that
// are already blocked or expired are rejected and not enqueued.
func (s *cardService) AddToBlockQueue(ctx context.Context, id int64) error {
	card, err := s.cardRepo.FindByID(ctx, s.dbExecutor, id)
	if err != nil {
		return fmt.Errorf("block request: card %d: %w", id, err)
	}
	switch card.Status {
	case domain.CardStatusBlocked:
		return fmt.Errorf("block request: card %d already blocked: %w", id, util.ErrInvalidCard)
	case domain.CardStatusExpired:
		return fmt.Errorf("block request: cannot block expired card %d: %w", id, util.ErrInvalidCard)
	}
	s.blockQueue.Enqueue(id)
	return nil
}

// BlockAllRequested drains the block queue and applies BLOCKED to the
// drained ids in one bulk update. If the store call fails the drained
// ids are staged again so the request is not lost.
func (s *cardService) BlockAllRequested(ctx context.Context) (int64, error) {
	ids := s.blockQueue.Drain()
	if len(ids) == 0 {
		return 0, nil
	}
	affected, err := s.cardRepo.BulkSetStatus(ctx, s.dbExecutor, ids, domain.CardStatusBlocked)
	if err != nil {
		for _, id := range ids {
			s.blockQueue.Enqueue(id)
		}
		return 0, fmt.Errorf("block all requested: %w", err)
	}
	return affected, nil
}

// Expire sweeps every card whose expiry month has passed into the
// terminal EXPIRED state.
func (s *cardService) Expire(ctx context.Context) (int64, error) {
	affected, err := s.cardRepo.BulkExpire(ctx, s.dbExecutor, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire: %w", err)
	}
	return affected, nil
}

// GetBalance returns the balance of a card the owner holds. A missing
// card and a card held by someone else are both reported as
// util.ErrAccessDenied, so existence is never leaked.
func (s *cardService) GetBalance(ctx context.Context, id int64, ownerID uuid.UUID) (decimal.Decimal, error) {
	card, err := s.cardRepo.FindByIDAndOwner(ctx, s.dbExecutor, id, ownerID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("get balance: card %d: %w", id, util.ErrAccessDenied)
		}
		return decimal.Zero, fmt.Errorf("get balance: card %d: %w", id, err)
	}
	return card.Balance, nil
}

// checkMoneyMovement is the fast-fail validity check run before a
// mutating call. It is not atomic with the mutation; the store guards
// remain the source of truth.
func (s *cardService) checkMoneyMovement(ctx context.Context, id int64) error {
	card, err := s.cardRepo.FindByID(ctx, s.dbExecutor, id)
	if err != nil {
		return err
	}
	if !card.CanMoveMoney() {
		return fmt.Errorf("card %d is %s: %w", id, card.Status, util.ErrInvalidCard)
	}
	return nil
}

// Deposit adds amount to an active card's balance.
func (s *cardService) Deposit(ctx context.Context, id int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidInput
	}
	if err := s.checkMoneyMovement(ctx, id); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	affected, err := s.cardRepo.Deposit(ctx, s.dbExecutor, id, amount)
	if err != nil {
		return fmt.Errorf("deposit: card %d: %w", id, err)
	}
	if affected == 0 {
		// The card vanished between the check and the mutation. A
		// benign race, surfaced rather than retried.
		return fmt.Errorf("deposit: card %d: %w", id, util.ErrNotAccessible)
	}
	return nil
}

// Withdraw subtracts amount from an active card's balance. The store's
// balance guard decides the insufficient-funds case atomically.
func (s *cardService) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidInput
	}
	if err := s.checkMoneyMovement(ctx, id); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	affected, err := s.cardRepo.Withdraw(ctx, s.dbExecutor, id, amount)
	if err != nil {
		return fmt.Errorf("withdraw: card %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("withdraw: card %d: %w", id, util.ErrInsufficientBalance)
	}
	return nil
}

// Transfer moves amount between two active cards. Both legs run inside
// a single transaction; a failure on either leg leaves both balances
// untouched.
func (s *cardService) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidInput
	}
	if fromID == toID {
		return util.ErrSameCardTransfer
	}
	if err := s.checkMoneyMovement(ctx, fromID); err != nil {
		return fmt.Errorf("transfer: source: %w", err)
	}
	if err := s.checkMoneyMovement(ctx, toID); err != nil {
		return fmt.Errorf("transfer: destination: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	affected, err := s.cardRepo.Withdraw(ctx, txExecutor, fromID, amount)
	if err != nil {
		return fmt.Errorf("transfer: debit card %d: %w", fromID, err)
	}
	if affected == 0 {
		return fmt.Errorf("transfer: debit card %d: %w", fromID, util.ErrInsufficientBalance)
	}

	affected, err = s.cardRepo.Deposit(ctx, txExecutor, toID, amount)
	if err != nil {
		return fmt.Errorf("transfer: credit card %d: %w", toID, err)
	}
	if affected == 0 {
		return fmt.Errorf("transfer: credit card %d: %w", toID, util.ErrNotAccessible)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the card and returns its final snapshot.
func (s *cardService) Delete(ctx context.Context, id int64) (*domain.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("delete card %d: %w", id, err)
	}
	if err := s.cardRepo.DeleteByID(ctx, s.dbExecutor, id); err != nil {
		return nil, fmt.Errorf("delete card %d: %w", id, err)
	}
	return card, nil
}
