package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoProviders = `
providers:
  - source: ecb
    base_currency: EUR
    quote_convention: indirect
    bank_id: ecb
    frequencies: [Daily]
  - source: MNB
    base_currency: HUF
    quote_convention: Direct
    frequencies: [daily, monthly]
pegs:
  - currency: BGN
    pegged_to: EUR
    rate: "0.51129"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("QUERY_TIMEOUT", "5s")
	t.Setenv("MAX_DAILY_FETCH_DAYS", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REFRESH_INTERVAL", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 90, cfg.MaxDailyFetchDays)
	assert.Equal(t, time.Hour, cfg.RefreshInterval, "invalid durations fall back to the default")
	assert.Equal(t, 20*time.Second, cfg.RateAPITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "300-M", cfg.RateLimit)
}

func TestLoadRegistry_EmptyPathUsesDefaults(t *testing.T) {
	snapshot, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, snapshot.Providers(), len(registry.DefaultProviders()))
}

func TestLoadRegistry_File(t *testing.T) {
	snapshot, err := LoadRegistry(writeFile(t, "registry.yaml", twoProviders))
	require.NoError(t, err)

	ecb, err := snapshot.LookupProvider(domain.SourceECB)
	require.NoError(t, err)
	assert.Equal(t, domain.Indirect, ecb.QuoteConvention)
	assert.Equal(t, []domain.Frequency{domain.Daily}, ecb.SupportedFrequencies)

	mnb, err := snapshot.LookupProvider(domain.SourceMNB)
	require.NoError(t, err)
	assert.True(t, mnb.Supports(domain.Monthly))

	_, err = snapshot.LookupProvider(domain.SourceBOE)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedSource)

	peg, ok := snapshot.LookupPeg(domain.BGN)
	require.True(t, ok)
	assert.True(t, peg.Rate.Equal(decimal.RequireFromString("0.51129")))
}

func TestLoadRegistry_SampleFile(t *testing.T) {
	snapshot, err := LoadRegistry(filepath.Join("..", "..", "..", "config", "registry.yaml"))
	require.NoError(t, err)
	assert.Len(t, snapshot.Providers(), len(domain.Sources))
	assert.Len(t, snapshot.Pegs(), len(registry.DefaultPegs()))
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown source", "providers:\n  - {source: ACME, base_currency: EUR, quote_convention: Direct, frequencies: [Daily]}\n"},
		{"unknown frequency", "providers:\n  - {source: ECB, base_currency: EUR, quote_convention: Direct, frequencies: [Hourly]}\n"},
		{"bad convention", "providers:\n  - {source: ECB, base_currency: EUR, quote_convention: Sideways, frequencies: [Daily]}\n"},
		{"bad peg rate", "pegs:\n  - {currency: BGN, pegged_to: EUR, rate: lots}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeFile(t, "registry.yaml", tt.content))
			assert.ErrorIs(t, err, apperrors.ErrInvalidRegistry)
		})
	}

	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReloadRegistry(t *testing.T) {
	path := writeFile(t, "registry.yaml", twoProviders)
	holder := registry.NewHolder(registry.Default())
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	overlay := []domain.PeggedCurrency{{Currency: domain.AED, PeggedTo: domain.EUR, Rate: decimal.RequireFromString("0.25")}}

	v := newRegistryViper(path)
	require.True(t, reloadRegistry(v, holder, overlay, logger))

	current := holder.Load()
	assert.Len(t, current.Providers(), 2)
	peg, ok := current.LookupPeg(domain.AED)
	require.True(t, ok, "overlay pegs survive a reload")
	assert.Equal(t, domain.EUR, peg.PeggedTo)

	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - {source: ACME}\n"), 0o600))
	assert.False(t, reloadRegistry(v, holder, overlay, logger))
	assert.Same(t, current, holder.Load(), "a broken file keeps the previous snapshot")
	assert.Contains(t, logs.String(), "keeping current registry")
}
