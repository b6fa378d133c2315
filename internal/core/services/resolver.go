package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/ratecache"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/shopspring/decimal"
)

// Resolver computes cross rates from the cached quotes of one provider.
// It reads the cache directly and leaves every mutation to its Backfiller.
type Resolver struct {
	BaseService
	cache    *ratecache.Cache
	backfill Backfiller
}

// NewResolver creates a Resolver.
func NewResolver(cache *ratecache.Cache, backfill Backfiller) *Resolver {
	return &Resolver{cache: cache, backfill: backfill}
}

// Resolve returns the number of to units per one from unit on date, as published by provider at frequency.
// Pairs that do not involve the provider's base currency are triangulated through it,
// and currencies the provider does not quote are resolved through their peg in reg.
func (r *Resolver) Resolve(ctx context.Context, reg *registry.Snapshot, provider domain.ForexProvider, from, to domain.CurrencyCode, date time.Time, frequency domain.Frequency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	date = domain.NormalizeDate(date)

	if _, err := r.backfill.EnsureCoverage(ctx, provider, frequency, domain.StartOfMonth(date)); err != nil {
		return decimal.Decimal{}, err
	}

	base := provider.BaseCurrency
	if from != base && to != base {
		fromBase, err := r.Resolve(ctx, reg, provider, from, base, date, frequency)
		if err != nil {
			return decimal.Decimal{}, err
		}
		baseTo, err := r.Resolve(ctx, reg, provider, base, to, date, frequency)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return fromBase.Mul(baseTo), nil
	}

	foreign := from
	if from == base {
		foreign = to
	}

	part := r.cache.Partition(provider.Source, frequency)
	if !part.HasCurrency(foreign) {
		if peg, ok := reg.LookupPeg(foreign); ok {
			return r.resolvePeg(ctx, reg, provider, peg, from == base, date, frequency)
		}
		return decimal.Decimal{}, r.noRate(ctx, part, foreign, date)
	}

	quote, err := r.lookup(ctx, provider, part, foreign, date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return convert(provider.QuoteConvention, quote, from == base), nil
}

// resolvePeg converts between the base currency and a pegged currency through the currency it is pegged to.
func (r *Resolver) resolvePeg(ctx context.Context, reg *registry.Snapshot, provider domain.ForexProvider, peg domain.PeggedCurrency, fromBase bool, date time.Time, frequency domain.Frequency) (decimal.Decimal, error) {
	r.LogDebug(ctx, "Resolving through peg",
		slog.String("currency", string(peg.Currency)),
		slog.String("pegged_to", string(peg.PeggedTo)))

	// Units of the peg target per base unit.
	target, err := r.Resolve(ctx, reg, provider, provider.BaseCurrency, peg.PeggedTo, date, frequency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if fromBase {
		return target.DivRound(peg.Rate, domain.DivisionPrecision), nil
	}
	return peg.Rate.DivRound(target, domain.DivisionPrecision), nil
}

// lookup scans back from date to the floor date and, on a miss, backfills once.
// Below the floor the backfill runs from the start of date's month up to the floor,
// so that the floor can follow it.
func (r *Resolver) lookup(ctx context.Context, provider domain.ForexProvider, part *ratecache.Partition, currency domain.CurrencyCode, date time.Time) (decimal.Decimal, error) {
	if rate, _, ok := part.Lookup(currency, date, part.Floor()); ok {
		return rate, nil
	}

	floor := part.Floor()
	from, to := floor, date
	switch {
	case floor.Equal(domain.FloorUnbounded):
		from = domain.StartOfMonth(date)
	case floor.After(date):
		from, to = domain.StartOfMonth(date), floor.AddDate(0, 0, -1)
	}
	if _, err := r.backfill.BackfillRange(ctx, provider, part.Key().Frequency, from, to); err != nil {
		return decimal.Decimal{}, err
	}

	if rate, _, ok := part.Lookup(currency, date, part.Floor()); ok {
		return rate, nil
	}
	return decimal.Decimal{}, r.noRate(ctx, part, currency, date)
}

func (r *Resolver) noRate(ctx context.Context, part *ratecache.Partition, currency domain.CurrencyCode, date time.Time) error {
	key := part.Key()
	err := &apperrors.NoRateFoundError{
		Source:    string(key.Source),
		Frequency: string(key.Frequency),
		Currency:  string(currency),
		Date:      date,
		FloorDate: part.Floor(),
	}
	r.LogDebug(ctx, "No rate found", slog.String("error", err.Error()))
	return fmt.Errorf("resolve %s: %w", currency, err)
}

// convert turns a cached quote of the foreign currency into a rate in the requested direction.
// Direct quotes are base units per foreign unit, indirect quotes foreign units per base unit.
func convert(convention domain.QuoteConvention, quote decimal.Decimal, fromBase bool) decimal.Decimal {
	direct := convention == domain.Direct
	if direct == fromBase {
		return domain.Inverse(quote)
	}
	return quote
}
