package config

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// registryFile is the on-disk layout of the provider and peg tables.
type registryFile struct {
	Providers []providerEntry `mapstructure:"providers"`
	Pegs      []pegEntry      `mapstructure:"pegs"`
}

type providerEntry struct {
	Source               string   `mapstructure:"source"`
	BaseCurrency         string   `mapstructure:"base_currency"`
	QuoteConvention      string   `mapstructure:"quote_convention"`
	BankID               string   `mapstructure:"bank_id"`
	SupportedFrequencies []string `mapstructure:"frequencies"`
}

// pegEntry.Rate is the number of PeggedTo units per one unit of Currency.
type pegEntry struct {
	Currency string `mapstructure:"currency"`
	PeggedTo string `mapstructure:"pegged_to"`
	Rate     string `mapstructure:"rate"`
}

// LoadRegistry reads the registry file at path. An empty path yields the built-in tables.
func LoadRegistry(path string) (*registry.Snapshot, error) {
	if path == "" {
		return registry.Default(), nil
	}
	v := newRegistryViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read registry file %s: %w", path, err)
	}
	return decodeRegistry(v)
}

// WatchRegistry reloads the registry file on every change and swaps the result into holder.
// overlay pegs, typically those loaded from the store, take precedence over the file.
// A file that fails to load or validate is logged and the previous snapshot stays in effect.
func WatchRegistry(path string, holder *registry.Holder, overlay []domain.PeggedCurrency, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	v := newRegistryViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read registry file %s: %w", path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		reloadRegistry(v, holder, overlay, logger.With(slog.String("file", e.Name)))
	})
	v.WatchConfig()
	return nil
}

func reloadRegistry(v *viper.Viper, holder *registry.Holder, overlay []domain.PeggedCurrency, logger *slog.Logger) bool {
	if err := v.ReadInConfig(); err != nil {
		logger.Error("Failed to re-read registry file, keeping current registry", slog.String("error", err.Error()))
		return false
	}
	next, err := decodeRegistry(v)
	if err == nil {
		next, err = next.WithPegs(overlay)
	}
	if err != nil {
		logger.Error("Invalid registry file, keeping current registry", slog.String("error", err.Error()))
		return false
	}
	holder.Swap(next)
	logger.Info("Registry reloaded",
		slog.Int("providers", len(next.Providers())),
		slog.Int("pegs", len(next.Pegs())))
	return true
}

func newRegistryViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	return v
}

func decodeRegistry(v *viper.Viper) (*registry.Snapshot, error) {
	var file registryFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRegistry, err)
	}

	providers := make([]domain.ForexProvider, 0, len(file.Providers))
	for _, entry := range file.Providers {
		p, err := entry.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: provider %q: %v", apperrors.ErrInvalidRegistry, entry.Source, err)
		}
		providers = append(providers, p)
	}

	pegs := make([]domain.PeggedCurrency, 0, len(file.Pegs))
	for _, entry := range file.Pegs {
		peg, err := entry.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: peg %q: %v", apperrors.ErrInvalidRegistry, entry.Currency, err)
		}
		pegs = append(pegs, peg)
	}

	return registry.NewSnapshot(providers, pegs)
}

func (e providerEntry) toDomain() (domain.ForexProvider, error) {
	source, err := domain.ParseSource(e.Source)
	if err != nil {
		return domain.ForexProvider{}, err
	}
	base, err := domain.ParseCurrencyCode(e.BaseCurrency)
	if err != nil {
		return domain.ForexProvider{}, err
	}
	convention, err := domain.ParseQuoteConvention(e.QuoteConvention)
	if err != nil {
		return domain.ForexProvider{}, err
	}
	frequencies := make([]domain.Frequency, 0, len(e.SupportedFrequencies))
	for _, raw := range e.SupportedFrequencies {
		f, err := domain.ParseFrequency(raw)
		if err != nil {
			return domain.ForexProvider{}, err
		}
		frequencies = append(frequencies, f)
	}
	return domain.ForexProvider{
		Source:               source,
		BaseCurrency:         base,
		QuoteConvention:      convention,
		BankID:               e.BankID,
		SupportedFrequencies: frequencies,
	}, nil
}

func (e pegEntry) toDomain() (domain.PeggedCurrency, error) {
	currency, err := domain.ParseCurrencyCode(e.Currency)
	if err != nil {
		return domain.PeggedCurrency{}, err
	}
	peggedTo, err := domain.ParseCurrencyCode(e.PeggedTo)
	if err != nil {
		return domain.PeggedCurrency{}, err
	}
	rate, err := decimal.NewFromString(e.Rate)
	if err != nil {
		return domain.PeggedCurrency{}, fmt.Errorf("rate %q: %w", e.Rate, err)
	}
	return domain.PeggedCurrency{Currency: currency, PeggedTo: peggedTo, Rate: rate}, nil
}
