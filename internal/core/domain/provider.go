package domain

import (
	"github.com/shopspring/decimal"
)

// ForexProvider describes how a source publishes its rates.
type ForexProvider struct {
	Source          ExchangeRateSource `json:"source"`
	BaseCurrency    CurrencyCode       `json:"baseCurrency"`
	QuoteConvention QuoteConvention    `json:"quoteConvention"`
	// BankID is the identifier the remote rate API uses for this source.
	BankID               string      `json:"bankId"`
	SupportedFrequencies []Frequency `json:"supportedFrequencies"`
}

// Supports reports whether the provider publishes rates at the given cadence.
func (p ForexProvider) Supports(f Frequency) bool {
	for _, s := range p.SupportedFrequencies {
		if s == f {
			return true
		}
	}
	return false
}

// PeggedCurrency is a currency whose value is fixed against another currency by configuration.
// Rate is the number of PeggedTo units per one unit of Currency.
type PeggedCurrency struct {
	Currency CurrencyCode    `json:"currency"`
	PeggedTo CurrencyCode    `json:"peggedTo"`
	Rate     decimal.Decimal `json:"rate"`
}
