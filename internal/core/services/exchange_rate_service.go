package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/SscSPs/fx_rates_service/internal/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultQueryTimeout bounds a single rate query, backfills included.
const DefaultQueryTimeout = 30 * time.Second

// Refresher pulls the latest quotes of a provider.
type Refresher interface {
	RefreshLatest(ctx context.Context, provider domain.ForexProvider) (int, error)
}

// ExchangeRateService answers rate queries against the current registry.
type ExchangeRateService struct {
	BaseService
	registry     *registry.Holder
	resolver     *Resolver
	refresher    Refresher
	metrics      *metrics.RateMetrics
	queryTimeout time.Duration
	inflight     singleflight.Group
}

// ExchangeRateOption configures an ExchangeRateService.
type ExchangeRateOption func(*ExchangeRateService)

// WithQueryTimeout bounds every GetRate call.
func WithQueryTimeout(d time.Duration) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithQueryMetrics records query outcomes in m.
func WithQueryMetrics(m *metrics.RateMetrics) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		s.metrics = m
	}
}

// WithServiceLogger sets the logger used outside of requests.
func WithServiceLogger(logger *slog.Logger) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		s.Logger = logger
	}
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(holder *registry.Holder, resolver *Resolver, refresher Refresher, opts ...ExchangeRateOption) *ExchangeRateService {
	s := &ExchangeRateService{
		registry:     holder,
		resolver:     resolver,
		refresher:    refresher,
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRate validates the query and resolves it. Identical concurrent queries share one resolution.
func (s *ExchangeRateService) GetRate(ctx context.Context, fromCode, toCode string, date time.Time, source domain.ExchangeRateSource, frequency domain.Frequency) (decimal.Decimal, error) {
	start := time.Now()
	rate, err := s.getRate(ctx, fromCode, toCode, date, source, frequency)
	s.metrics.ObserveQuery(source, frequency, outcomeOf(err), time.Since(start))
	return rate, err
}

func (s *ExchangeRateService) getRate(ctx context.Context, fromCode, toCode string, date time.Time, source domain.ExchangeRateSource, frequency domain.Frequency) (decimal.Decimal, error) {
	from, err := domain.ParseCurrencyCode(fromCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	to, err := domain.ParseCurrencyCode(toCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	frequency, err = domain.ParseFrequency(string(frequency))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if date.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}

	reg := s.registry.Load()
	provider, err := reg.LookupProvider(source)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !provider.Supports(frequency) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s does not publish %s rates", apperrors.ErrUnsupportedFrequency, source, frequency)
	}
	date = domain.NormalizeDate(date)

	key := fmt.Sprintf("%s|%s|%s|%s|%s", source, frequency, from, to, date.Format(time.DateOnly))
	ch := s.inflight.DoChan(key, func() (any, error) {
		// The shared resolution must not die with the first caller's context.
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
		defer cancel()
		rate, err := s.resolver.Resolve(qctx, reg, provider, from, to, date, frequency)
		if err != nil && qctx.Err() != nil {
			err = fmt.Errorf("%w: %s->%s on %s after %s: %w", apperrors.ErrTimeout, from, to, date.Format(time.DateOnly), s.queryTimeout, err)
		}
		return rate, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, apperrors.ErrNoRateFound) || errors.Is(res.Err, apperrors.ErrTimeout) {
				s.LogError(ctx, res.Err, "Rate query failed",
					slog.String("source", string(source)),
					slog.String("frequency", string(frequency)),
					slog.String("from", string(from)),
					slog.String("to", string(to)),
					slog.Time("date", date))
			}
			return decimal.Decimal{}, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	case <-ctx.Done():
		return decimal.Decimal{}, fmt.Errorf("%w: %w", apperrors.ErrTimeout, ctx.Err())
	}
}

// ListProviders returns the providers of the registry in effect.
func (s *ExchangeRateService) ListProviders() []domain.ForexProvider {
	return s.registry.Load().Providers()
}

// RefreshLatest pulls the latest quotes of source.
func (s *ExchangeRateService) RefreshLatest(ctx context.Context, source domain.ExchangeRateSource) (int, error) {
	provider, err := s.registry.Load().LookupProvider(source)
	if err != nil {
		return 0, err
	}
	n, err := s.refresher.RefreshLatest(ctx, provider)
	if err != nil {
		s.LogError(ctx, err, "Refresh failed", slog.String("source", string(source)))
		return n, err
	}
	s.LogInfo(ctx, "Refreshed latest rates", slog.String("source", string(source)), slog.Int("changed", n))
	return n, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperrors.ErrNoRateFound):
		return metrics.OutcomeMiss
	case errors.Is(err, apperrors.ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnknownCurrency),
		errors.Is(err, apperrors.ErrUnsupportedSource),
		errors.Is(err, apperrors.ErrUnsupportedFrequency):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
