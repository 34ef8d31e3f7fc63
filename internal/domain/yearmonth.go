// internal/domain/yearmonth.go
package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// YearMonth is a calendar month without a day component, used for card
// expiry. It is stored in the database as the last day of the month so
// that plain DATE comparisons line up with month-granularity semantics.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf extracts the year and month of t in UTC.
func YearMonthOf(t time.Time) YearMonth {
	u := t.UTC()
	return YearMonth{Year: u.Year(), Month: u.Month()}
}

// AddYears returns the same month n years later.
func (ym YearMonth) AddYears(n int) YearMonth {
	return YearMonth{Year: ym.Year + n, Month: ym.Month}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// EndOfMonth returns midnight UTC on the last day of the month.
func (ym YearMonth) EndOfMonth() time.Time {
	firstOfNext := time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

// String formats the month as "YYYY-MM".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Value implements driver.Valuer, storing the end-of-month date.
func (ym YearMonth) Value() (driver.Value, error) {
	return ym.EndOfMonth(), nil
}

// Scan implements sql.Scanner for DATE columns.
func (ym *YearMonth) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*ym = YearMonthOf(v)
		return nil
	case nil:
		return fmt.Errorf("cannot scan NULL into YearMonth")
	default:
		return fmt.Errorf("cannot scan %T into YearMonth", src)
	}
}

// MarshalJSON encodes the month as "YYYY-MM".
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", ym.String())), nil
}

// UnmarshalJSON decodes a "YYYY-MM" string.
func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	var year int
	var month int
	if _, err := fmt.Sscanf(string(data), "\"%04d-%02d\"", &year, &month); err != nil {
		return fmt.Errorf("invalid year-month %s: %w", data, err)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month %d in year-month", month)
	}
	*ym = YearMonth{Year: year, Month: time.Month(month)}
	return nil
}
