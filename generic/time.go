package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day (contracts, billing and events are all day-based)
// =============================================================================

const dateLayout = "2006-01-02"

// TimePoint is a calendar day in UTC. The zero value means "not set".
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) TimePoint {
	t = t.UTC()
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return TimePoint{}, &ValidationError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return TimePoint{Time: t}, nil
}

// ParseDatePtr parses an optional date. Empty input yields nil.
func ParseDatePtr(s string) (*TimePoint, error) {
	if s == "" {
		return nil, nil
	}
	tp, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

// MustDate panics on malformed input. For fixtures and tests.
func MustDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Ptr returns a pointer to a copy of tp.
func (tp TimePoint) Ptr() *TimePoint { return &tp }

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Compare returns -1, 0 or +1.
func (tp TimePoint) Compare(other TimePoint) int { return tp.Time.Compare(other.Time) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format(dateLayout)
}

// MarshalText renders the day as YYYY-MM-DD.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*tp = TimePoint{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// YEAR-MONTH - Calendar month used for snapshots and billing
// =============================================================================

const yearMonthLayout = "2006-01"

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// YearMonthOf returns the month containing tp.
func YearMonthOf(tp TimePoint) YearMonth {
	return YearMonth{Year: tp.Year(), Month: tp.Month()}
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return YearMonth{}, &ValidationError{Field: "month", Value: s, Err: ErrInvalidYearMonth}
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func MustYearMonth(s string) YearMonth {
	ym, err := ParseYearMonth(s)
	if err != nil {
		panic(err)
	}
	return ym
}

func (ym YearMonth) Start() TimePoint { return StartOfMonth(ym.Year, ym.Month) }
func (ym YearMonth) End() TimePoint   { return EndOfMonth(ym.Year, ym.Month) }
func (ym YearMonth) Period() Period   { return Period{Start: ym.Start(), End: ym.End()} }

func (ym YearMonth) Next() YearMonth { return YearMonthOf(ym.Start().AddMonths(1)) }

func (ym YearMonth) Before(other YearMonth) bool { return ym.Start().Before(other.Start()) }

// MonthsUntil counts the months from ym to other, inclusive of both ends.
// Returns 0 when other precedes ym.
func (ym YearMonth) MonthsUntil(other YearMonth) int {
	n := (other.Year-ym.Year)*12 + int(other.Month) - int(ym.Month) + 1
	if n < 0 {
		return 0
	}
	return n
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

func (ym YearMonth) MarshalText() ([]byte, error) { return []byte(ym.String()), nil }

func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}
