package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
)

// CurrencyCode is an ISO 4217 currency identifier supported by the service.
type CurrencyCode string

const (
	AED CurrencyCode = "AED"
	AUD CurrencyCode = "AUD"
	BAM CurrencyCode = "BAM"
	BGN CurrencyCode = "BGN"
	BRL CurrencyCode = "BRL"
	CAD CurrencyCode = "CAD"
	CHF CurrencyCode = "CHF"
	CNY CurrencyCode = "CNY"
	CZK CurrencyCode = "CZK"
	DKK CurrencyCode = "DKK"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	HKD CurrencyCode = "HKD"
	HUF CurrencyCode = "HUF"
	IDR CurrencyCode = "IDR"
	ILS CurrencyCode = "ILS"
	INR CurrencyCode = "INR"
	ISK CurrencyCode = "ISK"
	JPY CurrencyCode = "JPY"
	KRW CurrencyCode = "KRW"
	MXN CurrencyCode = "MXN"
	MYR CurrencyCode = "MYR"
	NOK CurrencyCode = "NOK"
	NZD CurrencyCode = "NZD"
	PHP CurrencyCode = "PHP"
	PLN CurrencyCode = "PLN"
	RON CurrencyCode = "RON"
	RSD CurrencyCode = "RSD"
	SAR CurrencyCode = "SAR"
	SEK CurrencyCode = "SEK"
	SGD CurrencyCode = "SGD"
	THB CurrencyCode = "THB"
	TRY CurrencyCode = "TRY"
	UAH CurrencyCode = "UAH"
	USD CurrencyCode = "USD"
	XAF CurrencyCode = "XAF"
	XOF CurrencyCode = "XOF"
	ZAR CurrencyCode = "ZAR"
)

// currencyNames doubles as the closed set of supported codes.
var currencyNames = map[CurrencyCode]string{
	AED: "UAE Dirham",
	AUD: "Australian Dollar",
	BAM: "Convertible Mark",
	BGN: "Bulgarian Lev",
	BRL: "Brazilian Real",
	CAD: "Canadian Dollar",
	CHF: "Swiss Franc",
	CNY: "Yuan Renminbi",
	CZK: "Czech Koruna",
	DKK: "Danish Krone",
	EUR: "Euro",
	GBP: "Pound Sterling",
	HKD: "Hong Kong Dollar",
	HUF: "Forint",
	IDR: "Rupiah",
	ILS: "New Israeli Sheqel",
	INR: "Indian Rupee",
	ISK: "Iceland Krona",
	JPY: "Yen",
	KRW: "Won",
	MXN: "Mexican Peso",
	MYR: "Malaysian Ringgit",
	NOK: "Norwegian Krone",
	NZD: "New Zealand Dollar",
	PHP: "Philippine Peso",
	PLN: "Zloty",
	RON: "Romanian Leu",
	RSD: "Serbian Dinar",
	SAR: "Saudi Riyal",
	SEK: "Swedish Krona",
	SGD: "Singapore Dollar",
	THB: "Baht",
	TRY: "Turkish Lira",
	UAH: "Hryvnia",
	USD: "US Dollar",
	XAF: "CFA Franc BEAC",
	XOF: "CFA Franc BCEAO",
	ZAR: "Rand",
}

// ParseCurrencyCode maps a string code to a CurrencyCode, ignoring case and surrounding whitespace.
func ParseCurrencyCode(code string) (CurrencyCode, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty currency code", apperrors.ErrUnknownCurrency)
	}
	c := CurrencyCode(strings.ToUpper(trimmed))
	if _, ok := currencyNames[c]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, code)
	}
	return c, nil
}

// IsValid reports whether c is one of the supported codes.
func (c CurrencyCode) IsValid() bool {
	_, ok := currencyNames[c]
	return ok
}

// Name returns the ISO name of the currency, or an empty string for unsupported codes.
func (c CurrencyCode) Name() string {
	return currencyNames[c]
}

func (c CurrencyCode) String() string {
	return string(c)
}
