package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a row of the fx_quotes table.
type Quote struct {
	Source        string          `json:"source"`
	Frequency     string          `json:"frequency"`
	CurrencyCode  string          `json:"currencyCode"`
	DateEffective time.Time       `json:"dateEffective"`
	Rate          decimal.Decimal `json:"rate"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// PeggedCurrency is a row of the fx_pegged_currencies table.
type PeggedCurrency struct {
	CurrencyCode string          `json:"currencyCode"`
	PeggedTo     string          `json:"peggedTo"`
	Rate         decimal.Decimal `json:"rate"`
}
