// Package background runs the periodic jobs of the service.
package background

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/fx_rates_service/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRefreshes bounds how many providers are refreshed at once.
const maxConcurrentRefreshes = 4

// Refresher is the part of the exchange rate service the background jobs drive.
type Refresher interface {
	portssvc.ProviderReaderSvc
	portssvc.ExchangeRateRefresherSvc
}

// BackgroundTasks refreshes the latest rates of every registered provider on a fixed interval.
type BackgroundTasks struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// NewBackgroundTasks returns the background jobs. A non-positive interval disables them.
func NewBackgroundTasks(refresher Refresher, interval time.Duration, logger *slog.Logger) *BackgroundTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundTasks{refresher: refresher, interval: interval, logger: logger}
}

// StartAll launches the jobs; they stop when ctx is cancelled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.interval <= 0 {
		bt.logger.Info("Periodic refresh disabled")
		return
	}
	go bt.startRatesRefresh(ctx)
}

func (bt *BackgroundTasks) startRatesRefresh(ctx context.Context) {
	ticker := time.NewTicker(bt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.RefreshAll(ctx)
		}
	}
}

// RefreshAll refreshes every provider of the current registry and returns the number of changed quotes.
// A failing provider is logged and does not stop the others.
func (bt *BackgroundTasks) RefreshAll(ctx context.Context) int {
	providers := bt.refresher.ListProviders()
	changed := make([]int, len(providers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentRefreshes)
	for i, p := range providers {
		g.Go(func() error {
			n, err := bt.refresher.RefreshLatest(ctx, p.Source)
			if err != nil {
				bt.logger.Warn("Periodic refresh failed",
					slog.String("source", string(p.Source)),
					slog.String("error", err.Error()))
				return nil
			}
			changed[i] = n
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range changed {
		total += n
	}
	bt.logger.Info("Periodic refresh finished", slog.Int("providers", len(providers)), slog.Int("changed", total))
	return total
}
