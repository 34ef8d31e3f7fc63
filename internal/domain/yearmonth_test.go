// internal/domain/yearmonth_test.go
package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearMonthBefore(t *testing.T) {
	feb := YearMonth{Year: 2026, Month: time.February}
	mar := YearMonth{Year: 2026, Month: time.March}
	nextYear := YearMonth{Year: 2027, Month: time.January}

	assert.True(t, feb.Before(mar))
	assert.False(t, mar.Before(feb))
	assert.False(t, feb.Before(feb))
	assert.True(t, mar.Before(nextYear))
}

func TestYearMonthEndOfMonth(t *testing.T) {
	assert.Equal(t,
		time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		YearMonth{Year: 2026, Month: time.February}.EndOfMonth())
	assert.Equal(t,
		time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC),
		YearMonth{Year: 2028, Month: time.February}.EndOfMonth())
	assert.Equal(t,
		time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		YearMonth{Year: 2026, Month: time.December}.EndOfMonth())
}

func TestYearMonthSQLRoundTrip(t *testing.T) {
	ym := YearMonth{Year: 2031, Month: time.July}

	v, err := ym.Value()
	require.NoError(t, err)

	var scanned YearMonth
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, ym, scanned)
}

func TestYearMonthScanRejectsOddTypes(t *testing.T) {
	var ym YearMonth
	assert.Error(t, ym.Scan(nil))
	assert.Error(t, ym.Scan("2026-07"))
}

func TestYearMonthJSON(t *testing.T) {
	ym := YearMonth{Year: 2031, Month: time.July}

	data, err := json.Marshal(ym)
	require.NoError(t, err)
	assert.Equal(t, `"2031-07"`, string(data))

	var decoded YearMonth
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ym, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"2031-13"`), &decoded))
}
