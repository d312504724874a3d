package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/moonlit/internal/constants"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth returns the month containing t.
func NewYearMonth(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(constants.YearMonthFormat, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return NewYearMonth(t), nil
}

// DaysIn returns the number of days in the month, accounting for leap years.
func (ym YearMonth) DaysIn() int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns midnight UTC of the given day of the month.
func (ym YearMonth) Day(day int) time.Time {
	return time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, time.UTC)
}

// Date returns the YYYY-MM-DD string for the given day of the month.
func (ym YearMonth) Date(day int) string {
	return ym.Day(day).Format(constants.DateFormat)
}

// First returns the first day of the month.
func (ym YearMonth) First() string { return ym.Date(1) }

// Last returns the last day of the month.
func (ym YearMonth) Last() string { return ym.Date(ym.DaysIn()) }

// Contains reports whether a YYYY-MM-DD date falls inside the month.
func (ym YearMonth) Contains(date string) bool {
	return len(date) >= 7 && date[:7] == ym.String()
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth { return NewYearMonth(ym.Day(1).AddDate(0, 1, 0)) }

// Prev returns the preceding month.
func (ym YearMonth) Prev() YearMonth { return NewYearMonth(ym.Day(1).AddDate(0, -1, 0)) }

// IsZero reports whether the month is unset.
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
