package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// RatePrecision is the number of fractional digits two rates are compared at.
	RatePrecision int32 = 10
	// DivisionPrecision bounds the digits kept when a rate is inverted or divided.
	DivisionPrecision int32 = 28
	// MaxDailyFetchDays is the default widest window requested from a daily rate source.
	MaxDailyFetchDays = 180
)

// FloorUnbounded marks a (source, frequency) pair with no known coverage.
var FloorUnbounded = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Quote is a single observed rate of Currency against the source's base currency,
// expressed in the source's quote convention.
type Quote struct {
	Source    ExchangeRateSource `json:"source"`
	Frequency Frequency          `json:"frequency"`
	Currency  CurrencyCode       `json:"currency"`
	Date      time.Time          `json:"date"`
	Rate      decimal.Decimal    `json:"rate"`
}

// Normalized returns a copy of q with its date truncated to the calendar day.
func (q Quote) Normalized() Quote {
	q.Date = NormalizeDate(q.Date)
	return q
}

// SameRate reports whether a and b are equal after rounding to RatePrecision.
func SameRate(a, b decimal.Decimal) bool {
	return a.Round(RatePrecision).Equal(b.Round(RatePrecision))
}

// Inverse returns 1/rate at DivisionPrecision.
func Inverse(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).DivRound(rate, DivisionPrecision)
}

// NormalizeDate drops the time of day, keeping the calendar date as seen in t's location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DateWindow is an inclusive range of calendar days.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// SplitDateRange cuts [from, to] into consecutive inclusive windows of at most maxDays days.
func SplitDateRange(from, to time.Time, maxDays int) []DateWindow {
	from, to = NormalizeDate(from), NormalizeDate(to)
	if to.Before(from) {
		return nil
	}
	if maxDays < 1 {
		maxDays = 1
	}

	var windows []DateWindow
	start := from
	for {
		marker := start.AddDate(0, 0, maxDays)
		if marker.After(to) {
			break
		}
		windows = append(windows, DateWindow{From: start, To: marker.AddDate(0, 0, -1)})
		start = marker
	}
	return append(windows, DateWindow{From: start, To: to})
}

// YearMonth names a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthsBetween lists every calendar month from from's month to to's month, inclusive.
func MonthsBetween(from, to time.Time) []YearMonth {
	start, end := StartOfMonth(from), StartOfMonth(to)
	var months []YearMonth
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, YearMonth{Year: m.Year(), Month: m.Month()})
	}
	return months
}
