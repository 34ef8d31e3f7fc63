// internal/cardnum/cardnum_test.go
package cardnum

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProducesValidNumbers(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))

	for _, scheme := range []Scheme{SchemeVisa, SchemeMasterCard, SchemeAmex, SchemeMir} {
		for i := 0; i < 100; i++ {
			number := g.Generate(scheme)

			assert.True(t, IsValid(number), "generated number %q should pass Luhn", number)
			assert.Len(t, number, scheme.Length())

			hasPrefix := false
			for _, p := range scheme.Prefixes() {
				if strings.HasPrefix(number, p) {
					hasPrefix = true
					break
				}
			}
			assert.True(t, hasPrefix, "number %q should start with a %s prefix", number, scheme)
		}
	}
}

func TestGenerateRandomCoversSchemes(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(2)))

	seen := map[Scheme]bool{}
	for i := 0; i < 200; i++ {
		number, scheme := g.GenerateRandom()
		assert.True(t, IsValid(number))
		assert.Len(t, number, scheme.Length())
		seen[scheme] = true
	}
	assert.Len(t, seen, 4, "200 draws should hit every scheme")
}

func TestGenerateIsDeterministicWithSeededSource(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(42)))
	b := NewGenerator(rand.New(rand.NewSource(42)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Generate(SchemeVisa), b.Generate(SchemeVisa))
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"known good visa test number", "4242424242424242", true},
		{"classic luhn example", "79927398713", true},
		{"with spaces", "4242 4242 4242 4242", true},
		{"surrounding whitespace", "  79927398713  ", true},
		{"check digit off by one", "4242424242424241", false},
		{"letters", "4242abcd42424242", false},
		{"empty", "", false},
		{"only spaces", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.number))
		})
	}
}

func TestSchemeLengths(t *testing.T) {
	assert.Equal(t, 15, SchemeAmex.Length())
	assert.Equal(t, 16, SchemeVisa.Length())
	assert.Equal(t, 16, SchemeMasterCard.Length())
	assert.Equal(t, 16, SchemeMir.Length())
}
