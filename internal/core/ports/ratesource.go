package ports

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
)

// HistoricalFetcher is the remote source of historical quotes.
// Results carry no ordering guarantee.
type HistoricalFetcher interface {
	// FetchDaily returns the daily quotes of provider dated in [from, to], both inclusive.
	FetchDaily(ctx context.Context, provider domain.ForexProvider, from, to time.Time) ([]domain.Quote, error)

	// FetchPeriod returns the quotes of provider at a weekly, bi-weekly or monthly frequency
	// published during the given calendar month.
	FetchPeriod(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, year int, month time.Month) ([]domain.Quote, error)
}
