// Package ratecache is the in-memory store of quotes and of the floor date
// (earliest date of known complete coverage) per source and frequency.
package ratecache

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Key identifies one rate series.
type Key struct {
	Source    domain.ExchangeRateSource
	Frequency domain.Frequency
}

// KeyOf returns the series a quote belongs to.
func KeyOf(q domain.Quote) Key {
	return Key{Source: q.Source, Frequency: q.Frequency}
}

// Cache owns one Partition per series. Partitions are never evicted.
type Cache struct {
	mu         sync.Mutex
	partitions map[Key]*Partition
}

// New returns a Cache with a Partition, at the unbounded floor, for every known source and frequency.
func New() *Cache {
	c := &Cache{partitions: make(map[Key]*Partition, len(domain.Sources)*len(domain.Frequencies))}
	for _, s := range domain.Sources {
		for _, f := range domain.Frequencies {
			key := Key{Source: s, Frequency: f}
			c.partitions[key] = newPartition(key)
		}
	}
	return c
}

// Partition returns the partition of a series, creating it if needed.
func (c *Cache) Partition(source domain.ExchangeRateSource, frequency domain.Frequency) *Partition {
	key := Key{Source: source, Frequency: frequency}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.partitions[key]
	if !ok {
		p = newPartition(key)
		c.partitions[key] = p
	}
	return p
}

// Reset drops every cached quote and restores every floor to domain.FloorUnbounded.
func (c *Cache) Reset() {
	c.mu.Lock()
	parts := make([]*Partition, 0, len(c.partitions))
	for _, p := range c.partitions {
		parts = append(parts, p)
	}
	c.mu.Unlock()

	for _, p := range parts {
		p.reset()
	}
}

// Partition holds the quotes of one series.
// Reads and merges are guarded by mu; fill serializes backfills so that
// concurrent callers needing the same gap wait instead of refetching it.
type Partition struct {
	key Key

	mu    sync.RWMutex
	rates map[domain.CurrencyCode]map[time.Time]decimal.Decimal
	floor time.Time

	fill chan struct{}
}

func newPartition(key Key) *Partition {
	return &Partition{
		key:   key,
		rates: make(map[domain.CurrencyCode]map[time.Time]decimal.Decimal),
		floor: domain.FloorUnbounded,
		fill:  make(chan struct{}, 1),
	}
}

// Key returns the series of the partition.
func (p *Partition) Key() Key {
	return p.key
}

// Floor returns the earliest date the partition is known to be complete from.
func (p *Partition) Floor() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.floor
}

// LowerFloor moves the floor back to date if date is earlier, and returns the floor in effect.
func (p *Partition) LowerFloor(date time.Time) time.Time {
	date = domain.NormalizeDate(date)

	p.mu.Lock()
	defer p.mu.Unlock()
	if date.Before(p.floor) {
		p.floor = date
	}
	return p.floor
}

// HasCurrency reports whether any quote of currency is cached, for any date.
func (p *Partition) HasCurrency(currency domain.CurrencyCode) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.rates[currency]) > 0
}

// Lookup returns the quote of currency on date or, failing that, the closest earlier quote
// not before floor. The returned time is the date of the quote found.
func (p *Partition) Lookup(currency domain.CurrencyCode, date, floor time.Time) (decimal.Decimal, time.Time, bool) {
	date, floor = domain.NormalizeDate(date), domain.NormalizeDate(floor)

	p.mu.RLock()
	defer p.mu.RUnlock()

	byDate := p.rates[currency]
	if len(byDate) == 0 {
		return decimal.Decimal{}, time.Time{}, false
	}
	for d := date; !d.Before(floor); d = d.AddDate(0, 0, -1) {
		if rate, ok := byDate[d]; ok {
			return rate, d, true
		}
	}
	return decimal.Decimal{}, time.Time{}, false
}

// Len returns the number of cached quotes.
func (p *Partition) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, byDate := range p.rates {
		n += len(byDate)
	}
	return n
}

// Conflict records an incoming quote that replaced a different cached rate.
type Conflict struct {
	Quote    domain.Quote
	Previous decimal.Decimal
}

// MergeResult describes what a Merge changed.
type MergeResult struct {
	// Changed holds the quotes that were inserted or overwrote a cached rate.
	Changed []domain.Quote
	// Conflicts holds the overwrites among Changed.
	Conflicts []Conflict
	// Observed is the number of quotes of this series that were offered.
	Observed int
	// MinDate is the earliest date among the offered quotes; zero when none were offered.
	MinDate time.Time
	// Rejected holds the quotes of this series that were dropped for a missing or non-positive rate.
	Rejected []domain.Quote
}

// Merge upserts quotes of this series. Quotes of other series are ignored,
// quotes without a positive rate are rejected. A cached rate is replaced only if the incoming one differs after rounding to domain.RatePrecision.
func (p *Partition) Merge(quotes []domain.Quote) MergeResult {
	var res MergeResult

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, q := range quotes {
		if KeyOf(q) != p.key || !q.Currency.IsValid() {
			continue
		}
		q = q.Normalized()
		if !q.Rate.IsPositive() {
			res.Rejected = append(res.Rejected, q)
			continue
		}

		res.Observed++
		if res.MinDate.IsZero() || q.Date.Before(res.MinDate) {
			res.MinDate = q.Date
		}

		byDate, ok := p.rates[q.Currency]
		if !ok {
			byDate = make(map[time.Time]decimal.Decimal)
			p.rates[q.Currency] = byDate
		}

		prev, exists := byDate[q.Date]
		switch {
		case !exists:
			byDate[q.Date] = q.Rate
			res.Changed = append(res.Changed, q)
		case !domain.SameRate(prev, q.Rate):
			byDate[q.Date] = q.Rate
			res.Changed = append(res.Changed, q)
			res.Conflicts = append(res.Conflicts, Conflict{Quote: q, Previous: prev})
		}
	}
	return res
}

// LockFill acquires the partition's backfill lock, giving up when ctx is done.
func (p *Partition) LockFill(ctx context.Context) error {
	select {
	case p.fill <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnlockFill releases the lock taken by LockFill.
func (p *Partition) UnlockFill() {
	<-p.fill
}

func (p *Partition) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates = make(map[domain.CurrencyCode]map[time.Time]decimal.Decimal)
	p.floor = domain.FloorUnbounded
}
