package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/ports"
	portsrepo "github.com/SscSPs/fx_rates_service/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_service/internal/core/ratecache"
	"github.com/SscSPs/fx_rates_service/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// refreshDailyDays is how many days before today a daily refresh re-requests.
const refreshDailyDays = 4

// Backfiller extends the coverage of the rate cache.
type Backfiller interface {
	// EnsureCoverage makes sure the series of provider at frequency is cached from target onwards.
	// It returns false, without an error, when the gap could not be filled.
	EnsureCoverage(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, target time.Time) (bool, error)

	// BackfillRange fetches and caches [from, to] regardless of the current floor date.
	BackfillRange(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, from, to time.Time) (bool, error)
}

// BackfillCoordinator is the only writer of the rate cache.
// It fills a series first from the durable store, then from the remote source,
// holding the series' fill lock so concurrent callers never fetch the same gap twice.
type BackfillCoordinator struct {
	BaseService
	cache             *ratecache.Cache
	store             portsrepo.QuoteRepositoryFacade
	fetcher           ports.HistoricalFetcher
	metrics           *metrics.RateMetrics
	now               func() time.Time
	maxDailyFetchDays int
}

// BackfillOption configures a BackfillCoordinator.
type BackfillOption func(*BackfillCoordinator)

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now func() time.Time) BackfillOption {
	return func(c *BackfillCoordinator) {
		c.now = now
	}
}

// WithMaxDailyFetchDays caps the width of a single daily fetch.
func WithMaxDailyFetchDays(days int) BackfillOption {
	return func(c *BackfillCoordinator) {
		if days > 0 {
			c.maxDailyFetchDays = days
		}
	}
}

// WithBackfillMetrics records backfill activity in m.
func WithBackfillMetrics(m *metrics.RateMetrics) BackfillOption {
	return func(c *BackfillCoordinator) {
		c.metrics = m
	}
}

// WithBackfillLogger sets the logger used outside of requests.
func WithBackfillLogger(logger *slog.Logger) BackfillOption {
	return func(c *BackfillCoordinator) {
		c.Logger = logger
	}
}

// NewBackfillCoordinator creates a BackfillCoordinator over cache.
func NewBackfillCoordinator(cache *ratecache.Cache, store portsrepo.QuoteRepositoryFacade, fetcher ports.HistoricalFetcher, opts ...BackfillOption) *BackfillCoordinator {
	c := &BackfillCoordinator{
		cache:             cache,
		store:             store,
		fetcher:           fetcher,
		now:               time.Now,
		maxDailyFetchDays: domain.MaxDailyFetchDays,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureCoverage lowers the floor date of the series to at most target.
// The durable store is tried first; the remote source fills whatever remains.
// Fetch and persistence failures are logged and reported as false.
func (c *BackfillCoordinator) EnsureCoverage(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, target time.Time) (bool, error) {
	if !provider.Supports(frequency) {
		return false, fmt.Errorf("%w: %s does not publish %s rates", apperrors.ErrUnsupportedFrequency, provider.Source, frequency)
	}
	target = domain.NormalizeDate(target)
	part := c.cache.Partition(provider.Source, frequency)
	if covers(part.Floor(), target) {
		return true, nil
	}

	if err := part.LockFill(ctx); err != nil {
		return false, err
	}
	defer part.UnlockFill()

	// Another caller may have filled the gap while we waited.
	if covers(part.Floor(), target) {
		return true, nil
	}

	c.loadFromStore(ctx, provider, part, target, c.gapEnd(part.Floor()))
	if covers(part.Floor(), target) {
		c.metrics.Backfill(provider.Source, frequency, metrics.StageStore, metrics.OutcomeOK)
		return true, nil
	}

	last := c.gapEnd(part.Floor()).AddDate(0, 0, -1)
	return c.fetchAndMerge(ctx, provider, part, target, last, metrics.StageRemote)
}

// BackfillRange fetches [from, to] from the remote source and merges it.
// The floor date only moves when the range reaches the already covered dates.
func (c *BackfillCoordinator) BackfillRange(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, from, to time.Time) (bool, error) {
	if !provider.Supports(frequency) {
		return false, fmt.Errorf("%w: %s does not publish %s rates", apperrors.ErrUnsupportedFrequency, provider.Source, frequency)
	}
	from, to = domain.NormalizeDate(from), domain.NormalizeDate(to)
	if to.Before(from) {
		return false, nil
	}
	part := c.cache.Partition(provider.Source, frequency)

	if err := part.LockFill(ctx); err != nil {
		return false, err
	}
	defer part.UnlockFill()

	return c.fetchAndMerge(ctx, provider, part, from, to, metrics.StageRange)
}

// RefreshLatest re-requests the recent past of every frequency provider publishes:
// the last few days for daily rates, the current month otherwise.
// It returns the number of quotes that were new or changed.
func (c *BackfillCoordinator) RefreshLatest(ctx context.Context, provider domain.ForexProvider) (int, error) {
	var (
		g       errgroup.Group
		changed atomic.Int64
	)
	for _, f := range provider.SupportedFrequencies {
		g.Go(func() error {
			n, err := c.refreshSeries(ctx, provider, f)
			changed.Add(int64(n))
			return err
		})
	}
	err := g.Wait()
	return int(changed.Load()), err
}

func (c *BackfillCoordinator) refreshSeries(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency) (int, error) {
	today := c.today()
	from := domain.StartOfMonth(today)
	if frequency == domain.Daily {
		from = today.AddDate(0, 0, -refreshDailyDays)
	}
	part := c.cache.Partition(provider.Source, frequency)

	if err := part.LockFill(ctx); err != nil {
		return 0, err
	}
	defer part.UnlockFill()

	quotes, err := c.fetch(ctx, provider, frequency, from, today)
	if err != nil {
		c.metrics.Backfill(provider.Source, frequency, metrics.StageRefresh, metrics.OutcomeError)
		res := c.merge(ctx, part, quotes, true)
		c.lowerFloor(part, res.MinDate)
		return len(res.Changed), err
	}
	if len(quotes) == 0 {
		c.metrics.Backfill(provider.Source, frequency, metrics.StageRefresh, metrics.OutcomeEmpty)
		c.LogWarn(ctx, "Refresh returned no quotes",
			slog.String("source", string(provider.Source)),
			slog.String("frequency", string(frequency)),
			slog.Time("from", from))
		return 0, nil
	}

	// Known values are loaded first so that unchanged quotes are not written again.
	loadFrom := domain.StartOfMonth(from)
	if part.Floor().After(loadFrom) {
		c.loadFromStore(ctx, provider, part, loadFrom, c.gapEnd(part.Floor()))
	}

	res := c.merge(ctx, part, quotes, true)
	if res.Observed > 0 {
		c.lowerFloor(part, from)
	}
	c.metrics.Backfill(provider.Source, frequency, metrics.StageRefresh, metrics.OutcomeOK)
	c.LogDebug(ctx, "Refreshed latest quotes",
		slog.String("source", string(provider.Source)),
		slog.String("frequency", string(frequency)),
		slog.Int("received", res.Observed),
		slog.Int("changed", len(res.Changed)))
	return len(res.Changed), nil
}

// loadFromStore merges the persisted quotes of the series dated in [from, to).
// The floor date follows only if the loaded quotes reach up to to; older islands are merged without it.
// It moves to from itself when the earliest loaded quote lags from by no more than a publication gap.
func (c *BackfillCoordinator) loadFromStore(ctx context.Context, provider domain.ForexProvider, part *ratecache.Partition, from, to time.Time) {
	key := part.Key()
	quotes, err := c.store.LoadQuotes(ctx, from, to)
	if err != nil {
		c.metrics.PersistenceError(key.Source, key.Frequency, "load")
		c.metrics.Backfill(key.Source, key.Frequency, metrics.StageStore, metrics.OutcomeError)
		c.LogError(ctx, fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err), "Failed to load quotes from store",
			slog.String("source", string(key.Source)),
			slog.String("frequency", string(key.Frequency)),
			slog.Time("from", from),
			slog.Time("to", to))
		return
	}

	var latest time.Time
	for _, q := range quotes {
		if ratecache.KeyOf(q) == key && q.Rate.IsPositive() && q.Date.After(latest) {
			latest = domain.NormalizeDate(q.Date)
		}
	}
	lag := staleness(key.Frequency)
	reachesFloor := !latest.IsZero() && !latest.Before(to.AddDate(0, 0, -lag))
	res := c.merge(ctx, part, quotes, false)
	if reachesFloor && res.Observed > 0 {
		if res.MinDate.After(from.AddDate(0, 0, lag)) {
			c.lowerFloor(part, res.MinDate)
		} else {
			c.lowerFloor(part, from)
		}
	}

	c.LogDebug(ctx, "Loaded quotes from store",
		slog.String("source", string(provider.Source)),
		slog.String("frequency", string(key.Frequency)),
		slog.Int("count", res.Observed),
		slog.Bool("contiguous", reachesFloor))
}

// fetchAndMerge fetches [from, to] and merges the result. When to reaches the covered dates
// the floor date moves to from, or only to the earliest quote received if the fetch failed part way.
// Remote errors degrade to false unless ctx itself is done.
func (c *BackfillCoordinator) fetchAndMerge(ctx context.Context, provider domain.ForexProvider, part *ratecache.Partition, from, to time.Time, stage string) (bool, error) {
	key := part.Key()
	contiguous := !to.Before(c.gapEnd(part.Floor()).AddDate(0, 0, -1))

	quotes, err := c.fetch(ctx, provider, key.Frequency, from, to)
	res := c.merge(ctx, part, quotes, true)
	if contiguous && res.Observed > 0 {
		// Windows are fetched newest first, so a partial result still ends at to.
		if err != nil {
			c.lowerFloor(part, res.MinDate)
		} else {
			c.lowerFloor(part, from)
		}
	}

	logArgs := []any{
		slog.String("source", string(key.Source)),
		slog.String("frequency", string(key.Frequency)),
		slog.Time("from", from),
		slog.Time("to", to),
	}
	if err != nil {
		c.metrics.Backfill(key.Source, key.Frequency, stage, metrics.OutcomeError)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.LogError(ctx, err, "Failed to fetch historical rates", logArgs...)
		return res.Observed > 0, nil
	}
	if res.Observed == 0 {
		c.metrics.Backfill(key.Source, key.Frequency, stage, metrics.OutcomeEmpty)
		c.LogError(ctx, fmt.Errorf("%w: empty response", apperrors.ErrFetchFailed), "No historical data found", logArgs...)
		return false, nil
	}

	c.metrics.Backfill(key.Source, key.Frequency, stage, metrics.OutcomeOK)
	c.LogInfo(ctx, "Backfilled historical rates", append(logArgs,
		slog.Int("received", res.Observed),
		slog.Int("changed", len(res.Changed)),
		slog.Time("floor", part.Floor()))...)
	return true, nil
}

// fetch requests [from, to] from the remote source, newest window first.
// On error the quotes of the windows fetched so far are returned with it.
func (c *BackfillCoordinator) fetch(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, from, to time.Time) ([]domain.Quote, error) {
	from, to = domain.NormalizeDate(from), domain.NormalizeDate(to)
	if to.Before(from) {
		return nil, nil
	}

	var out []domain.Quote
	switch frequency {
	case domain.Daily:
		windows := domain.SplitDateRange(from, to, c.maxDailyFetchDays)
		for i := len(windows) - 1; i >= 0; i-- {
			w := windows[i]
			quotes, err := c.fetcher.FetchDaily(ctx, provider, w.From, w.To)
			if err != nil {
				c.metrics.Fetch(provider.Source, frequency, metrics.OutcomeError)
				return out, fmt.Errorf("%w: %s daily rates %s..%s: %w", apperrors.ErrFetchFailed,
					provider.Source, w.From.Format(time.DateOnly), w.To.Format(time.DateOnly), err)
			}
			c.metrics.Fetch(provider.Source, frequency, metrics.OutcomeOK)
			out = append(out, quotes...)
		}
	case domain.Weekly, domain.BiWeekly, domain.Monthly:
		months := domain.MonthsBetween(from, to)
		for i := len(months) - 1; i >= 0; i-- {
			m := months[i]
			quotes, err := c.fetcher.FetchPeriod(ctx, provider, frequency, m.Year, m.Month)
			if err != nil {
				c.metrics.Fetch(provider.Source, frequency, metrics.OutcomeError)
				return out, fmt.Errorf("%w: %s %s rates %d-%02d: %w", apperrors.ErrFetchFailed,
					provider.Source, frequency, m.Year, int(m.Month), err)
			}
			c.metrics.Fetch(provider.Source, frequency, metrics.OutcomeOK)
			out = append(out, quotes...)
		}
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFrequency, frequency)
	}
	return out, nil
}

// merge applies quotes to part and optionally persists what changed. Persistence failures are logged only.
func (c *BackfillCoordinator) merge(ctx context.Context, part *ratecache.Partition, quotes []domain.Quote, persist bool) ratecache.MergeResult {
	key := part.Key()
	res := part.Merge(quotes)

	if len(res.Rejected) > 0 {
		c.metrics.Rejected(key.Source, key.Frequency, len(res.Rejected))
		first := res.Rejected[0]
		c.LogWarn(ctx, "Dropped quotes without a positive rate",
			slog.String("source", string(key.Source)),
			slog.String("frequency", string(key.Frequency)),
			slog.Int("count", len(res.Rejected)),
			slog.String("currency", string(first.Currency)),
			slog.Time("date", first.Date),
			slog.String("rate", first.Rate.String()))
	}

	for _, conflict := range res.Conflicts {
		c.metrics.ConsistencyFault(conflict.Quote)
		c.LogWarn(ctx, apperrors.ErrDataConsistency.Error(),
			slog.String("source", string(key.Source)),
			slog.String("frequency", string(key.Frequency)),
			slog.String("currency", string(conflict.Quote.Currency)),
			slog.Time("date", conflict.Quote.Date),
			slog.String("previous", conflict.Previous.String()),
			slog.String("current", conflict.Quote.Rate.String()))
	}
	c.metrics.Merged(key.Source, key.Frequency, len(res.Changed))

	if persist && len(res.Changed) > 0 {
		if err := c.store.SaveQuotes(ctx, res.Changed); err != nil {
			c.metrics.PersistenceError(key.Source, key.Frequency, "save")
			c.LogError(ctx, fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err), "Failed to persist quotes",
				slog.String("source", string(key.Source)),
				slog.String("frequency", string(key.Frequency)),
				slog.Int("count", len(res.Changed)))
		}
	}
	return res
}

func (c *BackfillCoordinator) lowerFloor(part *ratecache.Partition, date time.Time) {
	if date.IsZero() {
		return
	}
	key := part.Key()
	c.metrics.Floor(key.Source, key.Frequency, part.LowerFloor(date))
}

func (c *BackfillCoordinator) today() time.Time {
	return domain.NormalizeDate(c.now())
}

// gapEnd is the exclusive end of the uncovered dates below floor.
func (c *BackfillCoordinator) gapEnd(floor time.Time) time.Time {
	if floor.Equal(domain.FloorUnbounded) {
		return c.today().AddDate(0, 0, 1)
	}
	return floor
}

// covers reports whether floor is on or before target.
func covers(floor, target time.Time) bool {
	return !floor.Equal(domain.FloorUnbounded) && !floor.After(target)
}

// staleness is how far the newest persisted quote may lag behind the covered dates
// while the store is still trusted as contiguous with them.
func staleness(frequency domain.Frequency) int {
	switch frequency {
	case domain.Weekly:
		return 14
	case domain.BiWeekly:
		return 21
	case domain.Monthly:
		return 45
	default:
		return 7
	}
}
