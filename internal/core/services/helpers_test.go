package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var errUpstream = errors.New("upstream unavailable")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func q(source domain.ExchangeRateSource, freq domain.Frequency, c domain.CurrencyCode, date time.Time, rate string) domain.Quote {
	return domain.Quote{Source: source, Frequency: freq, Currency: c, Date: date, Rate: decimal.RequireFromString(rate)}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeFetcher serves a fixed universe of quotes and records every call.
type fakeFetcher struct {
	mu          sync.Mutex
	universe    []domain.Quote
	err         error
	delay       time.Duration
	dailyCalls  []domain.DateWindow
	periodCalls []domain.YearMonth
}

func newFakeFetcher(quotes ...domain.Quote) *fakeFetcher {
	return &fakeFetcher{universe: quotes}
}

func (f *fakeFetcher) FetchDaily(ctx context.Context, provider domain.ForexProvider, from, to time.Time) ([]domain.Quote, error) {
	f.mu.Lock()
	f.dailyCalls = append(f.dailyCalls, domain.DateWindow{From: from, To: to})
	err, delay := f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return f.match(func(qt domain.Quote) bool {
		return qt.Source == provider.Source && qt.Frequency == domain.Daily &&
			!qt.Date.Before(from) && !qt.Date.After(to)
	}), nil
}

func (f *fakeFetcher) FetchPeriod(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, year int, month time.Month) ([]domain.Quote, error) {
	f.mu.Lock()
	f.periodCalls = append(f.periodCalls, domain.YearMonth{Year: year, Month: month})
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return f.match(func(qt domain.Quote) bool {
		return qt.Source == provider.Source && qt.Frequency == frequency &&
			qt.Date.Year() == year && qt.Date.Month() == month
	}), nil
}

func (f *fakeFetcher) match(keep func(domain.Quote) bool) []domain.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Quote
	for _, qt := range f.universe {
		if keep(qt) {
			out = append(out, qt)
		}
	}
	return out
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) add(quotes ...domain.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.universe = append(f.universe, quotes...)
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dailyCalls) + len(f.periodCalls)
}

// --- Mock QuoteRepository ---
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) LoadQuotes(ctx context.Context, minDate, maxDate time.Time) ([]domain.Quote, error) {
	args := m.Called(ctx, minDate, maxDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	args := m.Called(ctx, quotes)
	return args.Error(0)
}

func (m *MockQuoteRepository) LoadPeggedCurrencies(ctx context.Context) ([]domain.PeggedCurrency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeggedCurrency), args.Error(1)
}
