package registry

import (
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultProviders is the provider table used when no registry file is configured.
func DefaultProviders() []domain.ForexProvider {
	return []domain.ForexProvider{
		{Source: domain.SourceECB, BaseCurrency: domain.EUR, QuoteConvention: domain.Indirect, BankID: "ecb",
			SupportedFrequencies: []domain.Frequency{domain.Daily}},
		{Source: domain.SourceBOE, BaseCurrency: domain.GBP, QuoteConvention: domain.Indirect, BankID: "boe",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly}},
		{Source: domain.SourceFED, BaseCurrency: domain.USD, QuoteConvention: domain.Indirect, BankID: "fed-h10",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Weekly, domain.Monthly}},
		{Source: domain.SourceMNB, BaseCurrency: domain.HUF, QuoteConvention: domain.Direct, BankID: "mnb",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly}},
		{Source: domain.SourceNBP, BaseCurrency: domain.PLN, QuoteConvention: domain.Direct, BankID: "nbp",
			SupportedFrequencies: []domain.Frequency{domain.Daily}},
		{Source: domain.SourceCNB, BaseCurrency: domain.CZK, QuoteConvention: domain.Direct, BankID: "cnb",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly}},
		{Source: domain.SourceBOC, BaseCurrency: domain.CAD, QuoteConvention: domain.Direct, BankID: "boc",
			SupportedFrequencies: []domain.Frequency{domain.Daily}},
		{Source: domain.SourceRBA, BaseCurrency: domain.AUD, QuoteConvention: domain.Indirect, BankID: "rba",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly}},
		{Source: domain.SourceSARB, BaseCurrency: domain.ZAR, QuoteConvention: domain.Direct, BankID: "sarb",
			SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Weekly, domain.BiWeekly, domain.Monthly}},
	}
}

// DefaultPegs is the pegged-currency table used when no registry file is configured.
func DefaultPegs() []domain.PeggedCurrency {
	perEUR := func(units string) decimal.Decimal { return domain.Inverse(decimal.RequireFromString(units)) }
	perUSD := perEUR

	return []domain.PeggedCurrency{
		{Currency: domain.BGN, PeggedTo: domain.EUR, Rate: perEUR("1.95583")},
		{Currency: domain.BAM, PeggedTo: domain.EUR, Rate: perEUR("1.95583")},
		{Currency: domain.XOF, PeggedTo: domain.EUR, Rate: perEUR("655.957")},
		{Currency: domain.XAF, PeggedTo: domain.EUR, Rate: perEUR("655.957")},
		{Currency: domain.AED, PeggedTo: domain.USD, Rate: perUSD("3.6725")},
		{Currency: domain.SAR, PeggedTo: domain.USD, Rate: perUSD("3.75")},
	}
}

// Default returns a Snapshot over the built-in tables.
func Default() *Snapshot {
	s, err := NewSnapshot(DefaultProviders(), DefaultPegs())
	if err != nil {
		panic("registry: invalid built-in tables: " + err.Error())
	}
	return s
}
