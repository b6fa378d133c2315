package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
)

// QuoteReader defines read operations for persisted quotes.
type QuoteReader interface {
	// LoadQuotes returns every persisted quote dated in [minDate, maxDate), across all series.
	LoadQuotes(ctx context.Context, minDate, maxDate time.Time) ([]domain.Quote, error)
}

// QuoteWriter defines write operations for persisted quotes.
type QuoteWriter interface {
	// SaveQuotes upserts quotes keyed by source, frequency, currency and date.
	SaveQuotes(ctx context.Context, quotes []domain.Quote) error
}

// PeggedCurrencyReader defines read operations for persisted currency pegs.
type PeggedCurrencyReader interface {
	// LoadPeggedCurrencies returns every persisted peg.
	LoadPeggedCurrencies(ctx context.Context) ([]domain.PeggedCurrency, error)
}

// QuoteRepositoryFacade combines all quote-related repository interfaces.
// It is the durable store the backfill coordinator reads from and writes to.
type QuoteRepositoryFacade interface {
	QuoteReader
	QuoteWriter
	PeggedCurrencyReader
}
