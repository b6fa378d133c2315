// Package registry holds the provider table and the pegged-currency table.
// Both are immutable once built; configuration reloads replace the whole Snapshot.
package registry

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
)

// Snapshot is a validated, read-only view of every registered provider and peg.
type Snapshot struct {
	providers map[domain.ExchangeRateSource]domain.ForexProvider
	pegs      map[domain.CurrencyCode]domain.PeggedCurrency
}

// NewSnapshot validates providers and pegs and returns a Snapshot over copies of them.
func NewSnapshot(providers []domain.ForexProvider, pegs []domain.PeggedCurrency) (*Snapshot, error) {
	s := &Snapshot{
		providers: make(map[domain.ExchangeRateSource]domain.ForexProvider, len(providers)),
		pegs:      make(map[domain.CurrencyCode]domain.PeggedCurrency, len(pegs)),
	}

	for _, p := range providers {
		if err := validateProvider(p); err != nil {
			return nil, err
		}
		if _, dup := s.providers[p.Source]; dup {
			return nil, fmt.Errorf("%w: duplicate provider for source %s", apperrors.ErrInvalidRegistry, p.Source)
		}
		p.SupportedFrequencies = append([]domain.Frequency(nil), p.SupportedFrequencies...)
		s.providers[p.Source] = p
	}

	for _, peg := range pegs {
		if err := validatePeg(peg); err != nil {
			return nil, err
		}
		if _, dup := s.pegs[peg.Currency]; dup {
			return nil, fmt.Errorf("%w: duplicate peg for %s", apperrors.ErrInvalidRegistry, peg.Currency)
		}
		s.pegs[peg.Currency] = peg
	}

	if err := s.checkPegCycles(); err != nil {
		return nil, err
	}
	return s, nil
}

func validateProvider(p domain.ForexProvider) error {
	if _, err := domain.ParseSource(string(p.Source)); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRegistry, err)
	}
	if !p.BaseCurrency.IsValid() {
		return fmt.Errorf("%w: provider %s has unknown base currency %q", apperrors.ErrInvalidRegistry, p.Source, p.BaseCurrency)
	}
	if p.QuoteConvention != domain.Direct && p.QuoteConvention != domain.Indirect {
		return fmt.Errorf("%w: provider %s has unknown quote convention %q", apperrors.ErrInvalidRegistry, p.Source, p.QuoteConvention)
	}
	if len(p.SupportedFrequencies) == 0 {
		return fmt.Errorf("%w: provider %s supports no frequency", apperrors.ErrInvalidRegistry, p.Source)
	}
	for _, f := range p.SupportedFrequencies {
		if _, err := domain.ParseFrequency(string(f)); err != nil {
			return fmt.Errorf("%w: provider %s: %v", apperrors.ErrInvalidRegistry, p.Source, err)
		}
	}
	return nil
}

func validatePeg(peg domain.PeggedCurrency) error {
	if !peg.Currency.IsValid() || !peg.PeggedTo.IsValid() {
		return fmt.Errorf("%w: peg %s->%s uses an unknown currency", apperrors.ErrInvalidRegistry, peg.Currency, peg.PeggedTo)
	}
	if peg.Currency == peg.PeggedTo {
		return fmt.Errorf("%w: %s is pegged to itself", apperrors.ErrInvalidRegistry, peg.Currency)
	}
	if !peg.Rate.IsPositive() {
		return fmt.Errorf("%w: peg %s->%s must have a positive rate", apperrors.ErrInvalidRegistry, peg.Currency, peg.PeggedTo)
	}
	return nil
}

// checkPegCycles rejects chains such as A->B->A, which the resolver would follow forever.
func (s *Snapshot) checkPegCycles() error {
	for start := range s.pegs {
		seen := map[domain.CurrencyCode]bool{start: true}
		for cur := s.pegs[start].PeggedTo; ; {
			next, pegged := s.pegs[cur]
			if !pegged {
				break
			}
			if seen[cur] {
				return fmt.Errorf("%w: peg cycle through %s", apperrors.ErrInvalidRegistry, start)
			}
			seen[cur] = true
			cur = next.PeggedTo
		}
	}
	return nil
}

// LookupProvider returns the provider registered for source.
func (s *Snapshot) LookupProvider(source domain.ExchangeRateSource) (domain.ForexProvider, error) {
	p, ok := s.providers[source]
	if !ok {
		return domain.ForexProvider{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedSource, source)
	}
	return p, nil
}

// LookupPeg returns the peg of currency, if it has one.
func (s *Snapshot) LookupPeg(currency domain.CurrencyCode) (domain.PeggedCurrency, bool) {
	peg, ok := s.pegs[currency]
	return peg, ok
}

// Providers returns every registered provider ordered by source.
func (s *Snapshot) Providers() []domain.ForexProvider {
	out := make([]domain.ForexProvider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Pegs returns every configured peg ordered by currency.
func (s *Snapshot) Pegs() []domain.PeggedCurrency {
	out := make([]domain.PeggedCurrency, 0, len(s.pegs))
	for _, p := range s.pegs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// WithPegs returns a new Snapshot whose pegs are s's pegs overridden by extra.
func (s *Snapshot) WithPegs(extra []domain.PeggedCurrency) (*Snapshot, error) {
	merged := make(map[domain.CurrencyCode]domain.PeggedCurrency, len(s.pegs)+len(extra))
	for c, p := range s.pegs {
		merged[c] = p
	}
	for _, p := range extra {
		merged[p.Currency] = p
	}
	pegs := make([]domain.PeggedCurrency, 0, len(merged))
	for _, p := range merged {
		pegs = append(pegs, p)
	}
	return NewSnapshot(s.Providers(), pegs)
}

// Holder publishes the current Snapshot to concurrent readers.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a Holder serving initial.
func NewHolder(initial *Snapshot) *Holder {
	h := &Holder{}
	h.current.Store(initial)
	return h
}

// Load returns the Snapshot in effect.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap replaces the Snapshot in effect.
func (h *Holder) Swap(next *Snapshot) {
	h.current.Store(next)
}
