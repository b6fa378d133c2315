// Package memory is a process-local quote store, used when no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_service/internal/core/ports/repositories"
)

type quoteKey struct {
	source    domain.ExchangeRateSource
	frequency domain.Frequency
	currency  domain.CurrencyCode
	date      time.Time
}

// QuoteRepository keeps quotes in a map keyed like the fx_quotes primary key.
type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[quoteKey]domain.Quote
	pegs   []domain.PeggedCurrency
}

// NewQuoteRepository creates an empty QuoteRepository serving pegs.
func NewQuoteRepository(pegs ...domain.PeggedCurrency) *QuoteRepository {
	return &QuoteRepository{
		quotes: make(map[quoteKey]domain.Quote),
		pegs:   append([]domain.PeggedCurrency(nil), pegs...),
	}
}

// NewRepositoryProvider wires a memory-backed RepositoryProvider.
func NewRepositoryProvider(pegs ...domain.PeggedCurrency) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{QuoteRepo: NewQuoteRepository(pegs...)}
}

// LoadQuotes returns every stored quote dated in [minDate, maxDate), oldest first.
func (r *QuoteRepository) LoadQuotes(ctx context.Context, minDate, maxDate time.Time) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	minDate, maxDate = domain.NormalizeDate(minDate), domain.NormalizeDate(maxDate)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Quote
	for _, q := range r.quotes {
		if !q.Date.Before(minDate) && q.Date.Before(maxDate) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

// SaveQuotes upserts quotes.
func (r *QuoteRepository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range quotes {
		q = q.Normalized()
		r.quotes[quoteKey{q.Source, q.Frequency, q.Currency, q.Date}] = q
	}
	return nil
}

// LoadPeggedCurrencies returns the pegs the repository was created with.
func (r *QuoteRepository) LoadPeggedCurrencies(ctx context.Context) ([]domain.PeggedCurrency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.PeggedCurrency(nil), r.pegs...), nil
}

// Len returns the number of stored quotes.
func (r *QuoteRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quotes)
}

var _ portsrepo.QuoteRepositoryFacade = (*QuoteRepository)(nil)
