package mapping

import (
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/models"
)

// ToModelQuote converts a domain Quote to a model Quote stamped with now
func ToModelQuote(d domain.Quote, now time.Time) models.Quote {
	d = d.Normalized()
	return models.Quote{
		Source:        string(d.Source),
		Frequency:     string(d.Frequency),
		CurrencyCode:  string(d.Currency),
		DateEffective: d.Date,
		Rate:          d.Rate,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// ToDomainQuote converts a model Quote to a domain Quote
func ToDomainQuote(m models.Quote) domain.Quote {
	return domain.Quote{
		Source:    domain.ExchangeRateSource(m.Source),
		Frequency: domain.Frequency(m.Frequency),
		Currency:  domain.CurrencyCode(m.CurrencyCode),
		Date:      domain.NormalizeDate(m.DateEffective),
		Rate:      m.Rate,
	}
}

// ToDomainPeggedCurrency converts a model PeggedCurrency to a domain PeggedCurrency
func ToDomainPeggedCurrency(m models.PeggedCurrency) domain.PeggedCurrency {
	return domain.PeggedCurrency{
		Currency: domain.CurrencyCode(m.CurrencyCode),
		PeggedTo: domain.CurrencyCode(m.PeggedTo),
		Rate:     m.Rate,
	}
}
