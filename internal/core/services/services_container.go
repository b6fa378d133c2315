package services

import (
	"log/slog"

	"github.com/SscSPs/fx_rates_service/internal/core/ports"
	portsrepo "github.com/SscSPs/fx_rates_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rates_service/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_service/internal/core/ratecache"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/SscSPs/fx_rates_service/internal/metrics"
	"github.com/SscSPs/fx_rates_service/internal/platform/config"
)

// Dependencies are the collaborators of the services that do not come from the database layer.
type Dependencies struct {
	Registry *registry.Holder
	Fetcher  ports.HistoricalFetcher
	Metrics  *metrics.RateMetrics
	Logger   *slog.Logger
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Dependencies) *portssvc.ServiceContainer {
	cache := ratecache.New()

	coordinator := NewBackfillCoordinator(cache, repos.QuoteRepo, deps.Fetcher,
		WithMaxDailyFetchDays(cfg.MaxDailyFetchDays),
		WithBackfillMetrics(deps.Metrics),
		WithBackfillLogger(deps.Logger),
	)
	resolver := NewResolver(cache, coordinator)
	resolver.Logger = deps.Logger

	return &portssvc.ServiceContainer{
		ExchangeRate: NewExchangeRateService(deps.Registry, resolver, coordinator,
			WithQueryTimeout(cfg.QueryTimeout),
			WithQueryMetrics(deps.Metrics),
			WithServiceLogger(deps.Logger),
		),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)
	_ Backfiller                     = (*BackfillCoordinator)(nil)
	_ Refresher                      = (*BackfillCoordinator)(nil)
)
