// internal/repository/memory/card_mem.go

// Package memory provides mutex-protected in-memory implementations of
// the repository interfaces. Conditional updates run atomically under
// the store lock, giving the same guarantees the SQL store gets from
// single-statement updates. Used by tests and local experimentation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cardflow/internal/domain"
	"cardflow/internal/repository"
	"cardflow/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardRepository is an in-memory repository.CardRepository. The
// DBExecutor argument is ignored; atomicity comes from the store lock.
type CardRepository struct {
	mu     sync.Mutex
	nextID int64
	cards  map[int64]*domain.Card
	byFp   map[string]int64
}

// NewCardRepository returns an empty in-memory card store.
func NewCardRepository() *CardRepository {
	return &CardRepository{
		cards: make(map[int64]*domain.Card),
		byFp:  make(map[string]int64),
	}
}

func (r *CardRepository) Insert(ctx context.Context, _ repository.DBExecutor, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFp[card.Number]; exists {
		return util.ErrConflict
	}
	r.nextID++
	card.ID = r.nextID
	cp := *card
	r.cards[cp.ID] = &cp
	r.byFp[cp.Number] = cp.ID
	return nil
}

func (r *CardRepository) FindByID(ctx context.Context, _ repository.DBExecutor, id int64) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CardRepository) FindByNumber(ctx context.Context, _ repository.DBExecutor, number string) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byFp[number]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *r.cards[id]
	return &cp, nil
}

func (r *CardRepository) FindByIDAndOwner(ctx context.Context, _ repository.DBExecutor, id int64, ownerID uuid.UUID) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || c.OwnerID != ownerID {
		return nil, util.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CardRepository) snapshot(filter func(*domain.Card) bool) []domain.Card {
	out := make([]domain.Card, 0, len(r.cards))
	for _, c := range r.cards {
		if filter == nil || filter(c) {
			out = append(out, *c)
		}
	}
	return out
}

func sortCards(items []domain.Card, sortBy, dir string) {
	less := func(a, b *domain.Card) bool { return a.ID < b.ID }
	switch sortBy {
	case "balance":
		less = func(a, b *domain.Card) bool { return a.Balance.LessThan(b.Balance) }
	case "status":
		less = func(a, b *domain.Card) bool { return a.Status < b.Status }
	case "expiry_date":
		less = func(a, b *domain.Card) bool { return a.Expiry.Before(b.Expiry) }
	case "owner_id":
		less = func(a, b *domain.Card) bool { return a.OwnerID.String() < b.OwnerID.String() }
	case "created_at":
		less = func(a, b *domain.Card) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		less = func(a, b *domain.Card) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if dir == repository.SortDesc {
			return less(&items[j], &items[i])
		}
		return less(&items[i], &items[j])
	})
}

func (r *CardRepository) page(items []domain.Card, page repository.Page) *repository.Paged {
	page, sortBy, dir := page.Normalize()
	sortCards(items, sortBy, dir)
	total := int64(len(items))

	start := page.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return &repository.Paged{Items: items[start:end], TotalCount: total, Number: page.Number, Size: page.Size}
}

func (r *CardRepository) ListByOwner(ctx context.Context, _ repository.DBExecutor, ownerID uuid.UUID, page repository.Page) (*repository.Paged, error) {
	r.mu.Lock()
	items := r.snapshot(func(c *domain.Card) bool { return c.OwnerID == ownerID })
	r.mu.Unlock()
	return r.page(items, page), nil
}

func (r *CardRepository) ListAll(ctx context.Context, _ repository.DBExecutor, page repository.Page) (*repository.Paged, error) {
	r.mu.Lock()
	items := r.snapshot(nil)
	r.mu.Unlock()
	return r.page(items, page), nil
}

func (r *CardRepository) BulkExpire(ctx context.Context, _ repository.DBExecutor, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	month := domain.YearMonthOf(now)
	var affected int64
	for _, c := range r.cards {
		if c.Status != domain.CardStatusExpired && c.Expiry.Before(month) {
			c.Status = domain.CardStatusExpired
			c.UpdatedAt = now.UTC()
			affected++
		}
	}
	return affected, nil
}

func (r *CardRepository) BulkSetStatus(ctx context.Context, _ repository.DBExecutor, ids []int64, status domain.CardStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var affected int64
	for _, id := range ids {
		c, ok := r.cards[id]
		if !ok || c.Status == domain.CardStatusExpired {
			continue
		}
		c.Status = status
		c.UpdatedAt = now
		affected++
	}
	return affected, nil
}

func (r *CardRepository) Deposit(ctx context.Context, _ repository.DBExecutor, id int64, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return 0, nil
	}
	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (r *CardRepository) Withdraw(ctx context.Context, _ repository.DBExecutor, id int64, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok || c.Balance.LessThan(amount) {
		return 0, nil
	}
	c.Balance = c.Balance.Sub(amount)
	c.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (r *CardRepository) DeleteByID(ctx context.Context, _ repository.DBExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil
	}
	delete(r.byFp, c.Number)
	delete(r.cards, id)
	return nil
}
