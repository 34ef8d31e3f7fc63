// internal/cardnum/cardnum.go

// Package cardnum generates and validates card numbers. Generated
// numbers are structurally valid per the Luhn mod-10 checksum; they
// carry no real issuer routing meaning.
package cardnum

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// Scheme is a card numbering family distinguished by prefix set and
// total length.
type Scheme string

const (
	SchemeVisa       Scheme = "VISA"
	SchemeMasterCard Scheme = "MASTERCARD"
	SchemeAmex       Scheme = "AMEX"
	SchemeMir        Scheme = "MIR"
)

var schemePrefixes = map[Scheme][]string{
	SchemeVisa:       {"4"},
	SchemeMasterCard: {"51", "52", "53", "54", "55"},
	SchemeAmex:       {"34", "37"},
	SchemeMir:        {"2200", "2201", "2202", "2203", "2204"},
}

var allSchemes = []Scheme{SchemeVisa, SchemeMasterCard, SchemeAmex, SchemeMir}

// Length returns the total number length for the scheme.
func (s Scheme) Length() int {
	if s == SchemeAmex {
		return 15
	}
	return 16
}

// Prefixes returns the scheme's declared prefix set.
func (s Scheme) Prefixes() []string {
	return schemePrefixes[s]
}

// Generator produces card numbers from an injected random source so
// that tests can seed it deterministically. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a Generator around the given random source.
func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate produces a structurally valid number for the scheme: a
// scheme prefix, uniform-random filler digits, and a trailing Luhn
// check digit.
func (g *Generator) Generate(scheme Scheme) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	prefixes := schemePrefixes[scheme]
	prefix := prefixes[g.rnd.Intn(len(prefixes))]
	length := scheme.Length()

	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < length-1 {
		b.WriteByte(byte('0' + g.rnd.Intn(10)))
	}
	body := b.String()
	return body + strconv.Itoa(checkDigit(body))
}

// GenerateRandom picks a scheme uniformly at random and generates a
// number for it.
func (g *Generator) GenerateRandom() (string, Scheme) {
	g.mu.Lock()
	scheme := allSchemes[g.rnd.Intn(len(allSchemes))]
	g.mu.Unlock()
	return g.Generate(scheme), scheme
}

// checkDigit computes the Luhn check digit for a number missing its
// final position.
func checkDigit(body string) int {
	sum := luhnSum(body, true)
	return (10 - sum%10) % 10
}

// IsValid reports whether the number passes the Luhn checksum.
// Whitespace is ignored; empty or non-digit input is invalid. Never
// returns an error.
func IsValid(number string) bool {
	clean := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if clean == "" {
		return false
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return false
		}
	}
	return luhnSum(clean, false)%10 == 0
}

// luhnSum sums the digits per Luhn, doubling every second digit from
// the right. When the check digit is absent the first digit from the
// right is already in a doubled position.
func luhnSum(digits string, missingCheckDigit bool) int {
	sum := 0
	double := missingCheckDigit
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum
}
