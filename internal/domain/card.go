// internal/domain/card.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// ParseCardStatus validates a status string received from a caller.
func ParseCardStatus(s string) (CardStatus, bool) {
	switch CardStatus(strings.ToUpper(s)) {
	case CardStatusActive:
		return CardStatusActive, true
	case CardStatusBlocked:
		return CardStatusBlocked, true
	case CardStatusExpired:
		return CardStatusExpired, true
	}
	return "", false
}

// IsTerminal reports whether the status can never be left again.
// EXPIRED is terminal; ACTIVE and BLOCKED are interchangeable.
func (s CardStatus) IsTerminal() bool {
	return s == CardStatusExpired
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return next == CardStatusActive || next == CardStatusBlocked || next == CardStatusExpired
}

// Card represents an issued virtual bank card. Identity, number, owner
// and expiry are fixed at creation; only status and balance change, and
// balance changes flow exclusively through the store's atomic
// deposit/withdraw primitives.
type Card struct {
	ID        int64           `db:"id" json:"id"`
	Number    string          `db:"-" json:"number"` // Plaintext in memory; encrypted at the store boundary
	OwnerID   uuid.UUID       `db:"owner_id" json:"owner_id"`
	Expiry    YearMonth       `db:"expiry_date" json:"expiry_date"`
	Status    CardStatus      `db:"status" json:"status"`
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(20, 4) in DB
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewCard creates a fresh ACTIVE card with zero balance, valid for
// five years from now.
func NewCard(number string, ownerID uuid.UUID, now time.Time) *Card {
	now = now.UTC()
	return &Card{
		Number:    number,
		OwnerID:   ownerID,
		Expiry:    YearMonthOf(now).AddYears(5),
		Status:    CardStatusActive,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyStatus unconditionally sets the status. Transition policy is
// enforced in the service layer, which has the administrative context
// the entity lacks.
func (c *Card) ApplyStatus(next CardStatus) {
	c.Status = next
}

// CanMoveMoney reports whether deposit/withdraw/transfer are permitted.
func (c *Card) CanMoveMoney() bool {
	return c.Status == CardStatusActive
}

// IsExpiredAt reports whether the card's expiry month is strictly
// before the month of now.
func (c *Card) IsExpiredAt(now time.Time) bool {
	return c.Expiry.Before(YearMonthOf(now))
}

// MaskedNumber returns the display form of the number with only the
// last four digits visible, grouped in blocks of four. A 15-digit
// number yields a 15-character mask so the length class stays visible.
func (c *Card) MaskedNumber() string {
	return MaskNumber(c.Number)
}

// MaskNumber masks any card number string, keeping the last four digits.
func MaskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	last4 := number[len(number)-4:]
	var b strings.Builder
	masked := len(number) - 4
	for i := 0; i < masked; i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('*')
	}
	b.WriteByte(' ')
	b.WriteString(last4)
	return b.String()
}

// CardView is the externally visible shape of a card. The full number
// appears only in the view returned by card creation; every other
// view carries the masked form.
type CardView struct {
	ID      int64           `json:"id"`
	Number  string          `json:"number"`
	OwnerID uuid.UUID       `json:"owner_id"`
	Expiry  YearMonth       `json:"expiry_date"`
	Status  CardStatus      `json:"status"`
	Balance decimal.Decimal `json:"balance"`
}

// MaskedView returns the card with its number masked.
func (c *Card) MaskedView() CardView {
	v := c.UnmaskedView()
	v.Number = c.MaskedNumber()
	return v
}

// UnmaskedView returns the card with the real number. Restricted to
// the creation response.
func (c *Card) UnmaskedView() CardView {
	return CardView{
		ID:      c.ID,
		Number:  c.Number,
		OwnerID: c.OwnerID,
		Expiry:  c.Expiry,
		Status:  c.Status,
		Balance: c.Balance,
	}
}
