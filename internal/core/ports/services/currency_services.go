package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetRate returns the number of toCode units per one fromCode unit on date, as published by source
	// at the given frequency. A missing rate is reported as an error matching apperrors.ErrNoRateFound,
	// never as a zero rate.
	GetRate(ctx context.Context, fromCode, toCode string, date time.Time, source domain.ExchangeRateSource, frequency domain.Frequency) (decimal.Decimal, error)
}

// ProviderReaderSvc defines read operations for the provider registry
type ProviderReaderSvc interface {
	// ListProviders returns every registered provider.
	ListProviders() []domain.ForexProvider
}

// ExchangeRateRefresherSvc defines operations that pull fresh data from the rate source
type ExchangeRateRefresherSvc interface {
	// RefreshLatest fetches the most recent window of every frequency the source supports
	// and returns the number of quotes that changed.
	RefreshLatest(ctx context.Context, source domain.ExchangeRateSource) (int, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ProviderReaderSvc
	ExchangeRateRefresherSvc
}
