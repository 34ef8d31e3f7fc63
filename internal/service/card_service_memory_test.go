// internal/service/card_service_memory_test.go

// Ledger tests over the in-memory store, exercising the real
// conditional-update semantics instead of mocks.
package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"cardflow/internal/cardnum"
	"cardflow/internal/domain"
	"cardflow/internal/queue"
	"cardflow/internal/repository"
	"cardflow/internal/repository/memory"
	"cardflow/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	svc      CardService
	cardRepo *memory.CardRepository
	owner    *domain.User
}

func newLedgerFixture(t *testing.T, now func() time.Time) *ledgerFixture {
	t.Helper()
	if now == nil {
		now = time.Now
	}
	cardRepo := memory.NewCardRepository()
	userRepo := memory.NewUserRepository()

	owner := domain.NewUser("holder")
	require.NoError(t, userRepo.Insert(context.Background(), nil, owner))

	generator := cardnum.NewGenerator(rand.New(rand.NewSource(7)))
	svc := NewCardService(nil, nil, cardRepo, userRepo, generator, queue.NewBlockQueue(),
		nopBeginTx, nopCommitTx, nopRollbackTx, now)

	return &ledgerFixture{svc: svc, cardRepo: cardRepo, owner: owner}
}

func (f *ledgerFixture) mustCreate(t *testing.T) *domain.Card {
	t.Helper()
	card, err := f.svc.Create(context.Background(), f.owner.ID)
	require.NoError(t, err)
	return card
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateRoundTrip(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	created := f.mustCreate(t)
	assert.True(t, cardnum.IsValid(created.Number))

	fetched, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Balance.IsZero())
	assert.Equal(t, domain.CardStatusActive, fetched.Status)
	assert.Equal(t, f.owner.ID, fetched.OwnerID)

	byNumber, err := f.svc.GetByNumber(ctx, created.Number)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)
}

func TestLedgerScenario(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	source := f.mustCreate(t)
	require.NoError(t, f.svc.Deposit(ctx, source.ID, dec("500")))
	require.NoError(t, f.svc.Withdraw(ctx, source.ID, dec("200")))

	balance, err := f.svc.GetBalance(ctx, source.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("300")), "balance is %s", balance)

	dest := f.mustCreate(t)
	require.NoError(t, f.svc.Transfer(ctx, source.ID, dest.ID, dec("300")))

	sourceBalance, err := f.svc.GetBalance(ctx, source.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, sourceBalance.IsZero())

	destBalance, err := f.svc.GetBalance(ctx, dest.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, destBalance.Equal(dec("300")))

	err = f.svc.Withdraw(ctx, source.ID, dec("1"))
	assert.True(t, util.IsError(err, util.ErrInsufficientBalance))
}

func TestConcurrentWithdrawals(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	card := f.mustCreate(t)
	require.NoError(t, f.svc.Deposit(ctx, card.ID, dec("100")))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.svc.Withdraw(ctx, card.ID, dec("80"))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case util.IsError(err, util.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one withdrawal may win")
	assert.Equal(t, 1, insufficient)

	balance, err := f.svc.GetBalance(ctx, card.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("20")), "final balance is %s", balance)
}

func TestTransferInsufficientLeavesBalancesUntouched(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	source := f.mustCreate(t)
	dest := f.mustCreate(t)
	require.NoError(t, f.svc.Deposit(ctx, source.ID, dec("30")))

	err := f.svc.Transfer(ctx, source.ID, dest.ID, dec("50"))
	assert.True(t, util.IsError(err, util.ErrInsufficientBalance))

	sourceBalance, err := f.svc.GetBalance(ctx, source.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, sourceBalance.Equal(dec("30")))

	destBalance, err := f.svc.GetBalance(ctx, dest.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, destBalance.IsZero())
}

func TestExpirySweep(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	f := newLedgerFixture(t, func() time.Time { return now })
	ctx := context.Background()

	insert := func(expiry domain.YearMonth, status domain.CardStatus, number string) int64 {
		card := domain.NewCard(number, f.owner.ID, now)
		card.Expiry = expiry
		card.Status = status
		require.NoError(t, f.cardRepo.Insert(ctx, nil, card))
		return card.ID
	}

	pastActive := insert(domain.YearMonth{Year: 2026, Month: time.July}, domain.CardStatusActive, "4242424242424242")
	alreadyExpired := insert(domain.YearMonth{Year: 2025, Month: time.January}, domain.CardStatusExpired, "79927398713")
	futureActive := insert(domain.YearMonth{Year: 2031, Month: time.August}, domain.CardStatusActive, "378282246310005")
	currentMonth := insert(domain.YearMonth{Year: 2026, Month: time.August}, domain.CardStatusActive, "5555555555554444")

	affected, err := f.svc.Expire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected, "only the past-expiry active card is swept")

	statusOf := func(id int64) domain.CardStatus {
		card, err := f.svc.GetByID(ctx, id)
		require.NoError(t, err)
		return card.Status
	}
	assert.Equal(t, domain.CardStatusExpired, statusOf(pastActive))
	assert.Equal(t, domain.CardStatusExpired, statusOf(alreadyExpired))
	assert.Equal(t, domain.CardStatusActive, statusOf(futureActive))
	assert.Equal(t, domain.CardStatusActive, statusOf(currentMonth), "a card expiring this month is still valid")
}

func TestBlockQueueEndToEnd(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	card := f.mustCreate(t)
	require.NoError(t, f.svc.AddToBlockQueue(ctx, card.ID))

	affected, err := f.svc.BlockAllRequested(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	blocked, err := f.svc.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusBlocked, blocked.Status)

	err = f.svc.AddToBlockQueue(ctx, card.ID)
	assert.True(t, util.IsError(err, util.ErrInvalidCard), "blocked card cannot be staged again")

	err = f.svc.Deposit(ctx, card.ID, dec("10"))
	assert.True(t, util.IsError(err, util.ErrInvalidCard), "blocked card rejects money movement")
}

func TestGetAllPagination(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.mustCreate(t)
	}

	paged, err := f.svc.GetAll(ctx, repository.Page{Size: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, int64(3), paged.TotalCount)

	second, err := f.svc.GetAll(ctx, repository.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
}

func TestGetBalanceOwnershipScoped(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	card := f.mustCreate(t)

	_, err := f.svc.GetBalance(ctx, card.ID, uuid.New())
	assert.True(t, util.IsError(err, util.ErrAccessDenied))
}

func TestDeleteRemovesCard(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	card := f.mustCreate(t)
	require.NoError(t, f.svc.Deposit(ctx, card.ID, dec("42")))

	snapshot, err := f.svc.Delete(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.Balance.Equal(dec("42")), "snapshot keeps the final balance")

	_, err = f.svc.GetByID(ctx, card.ID)
	assert.True(t, util.IsError(err, util.ErrNotFound))
}
