package dto

import (
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GetRateRequest is the query string of GET /api/v1/rates.
type GetRateRequest struct {
	From      string `form:"from" binding:"required,currency"`
	To        string `form:"to" binding:"required,currency"`
	Date      string `form:"date" binding:"required,datetime=2006-01-02"`
	Source    string `form:"source" binding:"required,source"`
	Frequency string `form:"frequency" binding:"omitempty,frequency"`
}

// ParsedDate returns Date as a UTC calendar day. Binding has already checked the layout.
func (r GetRateRequest) ParsedDate() time.Time {
	t, _ := time.Parse(time.DateOnly, r.Date)
	return t
}

// FrequencyOrDefault returns the requested frequency, Daily when omitted.
func (r GetRateRequest) FrequencyOrDefault() domain.Frequency {
	if r.Frequency == "" {
		return domain.Daily
	}
	f, _ := domain.ParseFrequency(r.Frequency)
	return f
}

// RateResponse is the answer to a rate query.
type RateResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Date      string          `json:"date"`
	Source    string          `json:"source"`
	Frequency string          `json:"frequency"`
	Rate      decimal.Decimal `json:"rate"`
}

// ToRateResponse builds the response of a resolved query.
func ToRateResponse(req GetRateRequest, source domain.ExchangeRateSource, frequency domain.Frequency, rate decimal.Decimal) RateResponse {
	from, _ := domain.ParseCurrencyCode(req.From)
	to, _ := domain.ParseCurrencyCode(req.To)
	return RateResponse{
		From:      string(from),
		To:        string(to),
		Date:      req.ParsedDate().Format(time.DateOnly),
		Source:    string(source),
		Frequency: string(frequency),
		Rate:      rate,
	}
}

// ProviderResponse describes one registered provider.
type ProviderResponse struct {
	Source          string   `json:"source"`
	BaseCurrency    string   `json:"baseCurrency"`
	QuoteConvention string   `json:"quoteConvention"`
	Frequencies     []string `json:"frequencies"`
}

// ListProvidersResponse wraps the provider list.
type ListProvidersResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// ToListProvidersResponse converts domain providers to their API form.
func ToListProvidersResponse(providers []domain.ForexProvider) ListProvidersResponse {
	out := make([]ProviderResponse, len(providers))
	for i, p := range providers {
		frequencies := make([]string, len(p.SupportedFrequencies))
		for j, f := range p.SupportedFrequencies {
			frequencies[j] = string(f)
		}
		out[i] = ProviderResponse{
			Source:          string(p.Source),
			BaseCurrency:    string(p.BaseCurrency),
			QuoteConvention: string(p.QuoteConvention),
			Frequencies:     frequencies,
		}
	}
	return ListProvidersResponse{Providers: out}
}

// RefreshResponse reports the outcome of a manual refresh.
type RefreshResponse struct {
	Source  string `json:"source"`
	Changed int    `json:"changed"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
