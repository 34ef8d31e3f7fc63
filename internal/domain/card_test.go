// internal/domain/card_test.go
package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	card := NewCard("4242424242424242", owner, now)

	assert.Equal(t, CardStatusActive, card.Status)
	assert.True(t, card.Balance.IsZero())
	assert.Equal(t, owner, card.OwnerID)
	assert.Equal(t, YearMonth{Year: 2031, Month: time.March}, card.Expiry)
}

func TestMaskNumberKeepsLastFourAndLengthClass(t *testing.T) {
	sixteen := &Card{Number: "4242424242424242"}
	fifteen := &Card{Number: "378282246310005"}

	assert.Equal(t, "**** **** **** 4242", sixteen.MaskedNumber())
	assert.Equal(t, "**** **** *** 0005", fifteen.MaskedNumber())
	// The two length classes stay visually distinct.
	assert.NotEqual(t, len(sixteen.MaskedNumber()), len(fifteen.MaskedNumber()))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from  CardStatus
		to    CardStatus
		legal bool
	}{
		{CardStatusActive, CardStatusBlocked, true},
		{CardStatusBlocked, CardStatusActive, true},
		{CardStatusActive, CardStatusExpired, true},
		{CardStatusBlocked, CardStatusExpired, true},
		{CardStatusExpired, CardStatusActive, false},
		{CardStatusExpired, CardStatusBlocked, false},
		{CardStatusExpired, CardStatusExpired, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.legal, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanMoveMoney(t *testing.T) {
	assert.True(t, (&Card{Status: CardStatusActive}).CanMoveMoney())
	assert.False(t, (&Card{Status: CardStatusBlocked}).CanMoveMoney())
	assert.False(t, (&Card{Status: CardStatusExpired}).CanMoveMoney())
}

func TestIsExpiredAt(t *testing.T) {
	card := &Card{Expiry: YearMonth{Year: 2026, Month: time.June}}

	assert.False(t, card.IsExpiredAt(time.Date(2026, time.June, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, card.IsExpiredAt(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, card.IsExpiredAt(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseCardStatus(t *testing.T) {
	status, ok := ParseCardStatus("blocked")
	assert.True(t, ok)
	assert.Equal(t, CardStatusBlocked, status)

	_, ok = ParseCardStatus("frozen")
	assert.False(t, ok)
}

func TestViews(t *testing.T) {
	card := NewCard("4242424242424242", uuid.New(), time.Now())
	card.ID = 7
	card.Balance = decimal.RequireFromString("12.50")

	unmasked := card.UnmaskedView()
	assert.Equal(t, "4242424242424242", unmasked.Number)

	masked := card.MaskedView()
	assert.Equal(t, "**** **** **** 4242", masked.Number)
	assert.Equal(t, unmasked.ID, masked.ID)
	assert.True(t, masked.Balance.Equal(card.Balance))
}
