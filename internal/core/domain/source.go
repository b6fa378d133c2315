package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
)

// ExchangeRateSource identifies an institution publishing historical rates.
type ExchangeRateSource string

const (
	SourceECB  ExchangeRateSource = "ECB"  // European Central Bank
	SourceBOE  ExchangeRateSource = "BOE"  // Bank of England
	SourceFED  ExchangeRateSource = "FED"  // Federal Reserve (H.10)
	SourceMNB  ExchangeRateSource = "MNB"  // Magyar Nemzeti Bank
	SourceNBP  ExchangeRateSource = "NBP"  // Narodowy Bank Polski
	SourceCNB  ExchangeRateSource = "CNB"  // Czech National Bank
	SourceBOC  ExchangeRateSource = "BOC"  // Bank of Canada
	SourceRBA  ExchangeRateSource = "RBA"  // Reserve Bank of Australia
	SourceSARB ExchangeRateSource = "SARB" // South African Reserve Bank
)

// Sources lists every known source in a stable order.
var Sources = []ExchangeRateSource{
	SourceECB, SourceBOE, SourceFED, SourceMNB, SourceNBP, SourceCNB, SourceBOC, SourceRBA, SourceSARB,
}

// ParseSource maps a source name to an ExchangeRateSource, ignoring case.
func ParseSource(s string) (ExchangeRateSource, error) {
	candidate := ExchangeRateSource(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Sources {
		if known == candidate {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedSource, s)
}

func (s ExchangeRateSource) String() string {
	return string(s)
}

// Frequency is the publication cadence of a rate series.
type Frequency string

const (
	Daily    Frequency = "Daily"
	Weekly   Frequency = "Weekly"
	BiWeekly Frequency = "BiWeekly"
	Monthly  Frequency = "Monthly"
)

// Frequencies lists every cadence in a stable order.
var Frequencies = []Frequency{Daily, Weekly, BiWeekly, Monthly}

// ParseFrequency maps a frequency name to a Frequency, ignoring case.
func ParseFrequency(s string) (Frequency, error) {
	trimmed := strings.TrimSpace(s)
	for _, f := range Frequencies {
		if strings.EqualFold(string(f), trimmed) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown frequency %q", apperrors.ErrValidation, s)
}

func (f Frequency) String() string {
	return string(f)
}

// QuoteConvention says which side of the pair a stored rate expresses.
type QuoteConvention string

const (
	// Direct rates are units of the base currency per one unit of the quoted currency.
	Direct QuoteConvention = "Direct"
	// Indirect rates are units of the quoted currency per one unit of the base currency.
	Indirect QuoteConvention = "Indirect"
)

// ParseQuoteConvention maps a convention name to a QuoteConvention, ignoring case.
func ParseQuoteConvention(s string) (QuoteConvention, error) {
	switch {
	case strings.EqualFold(s, string(Direct)):
		return Direct, nil
	case strings.EqualFold(s, string(Indirect)):
		return Indirect, nil
	}
	return "", fmt.Errorf("%w: unknown quote convention %q", apperrors.ErrValidation, s)
}
