package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func quote(c domain.CurrencyCode, date time.Time, rate string) domain.Quote {
	return domain.Quote{Source: domain.SourceECB, Frequency: domain.Daily, Currency: c, Date: date, Rate: decimal.RequireFromString(rate)}
}

func TestQuoteRepository_LoadIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	require.NoError(t, repo.SaveQuotes(ctx, []domain.Quote{
		quote(domain.USD, day(9), "1.09"),
		quote(domain.USD, day(10), "1.1"),
		quote(domain.GBP, day(10), "0.86"),
		quote(domain.USD, day(11), "1.11"),
	}))

	got, err := repo.LoadQuotes(ctx, day(10), day(11))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.GBP, got[0].Currency)
	assert.Equal(t, domain.USD, got[1].Currency)
}

func TestQuoteRepository_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	require.NoError(t, repo.SaveQuotes(ctx, []domain.Quote{quote(domain.USD, day(10), "1.1")}))
	require.NoError(t, repo.SaveQuotes(ctx, []domain.Quote{quote(domain.USD, time.Date(2024, time.January, 10, 18, 0, 0, 0, time.UTC), "1.2")}))

	assert.Equal(t, 1, repo.Len())
	got, err := repo.LoadQuotes(ctx, day(1), day(31))
	require.NoError(t, err)
	assert.Equal(t, "1.2", got[0].Rate.String())
}

func TestQuoteRepository_Pegs(t *testing.T) {
	peg := domain.PeggedCurrency{Currency: domain.BGN, PeggedTo: domain.EUR, Rate: decimal.RequireFromString("0.5113")}
	repo := memory.NewQuoteRepository(peg)

	pegs, err := repo.LoadPeggedCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.PeggedCurrency{peg}, pegs)
}

func TestQuoteRepository_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.NewQuoteRepository().LoadQuotes(ctx, day(1), day(2))
	assert.ErrorIs(t, err, context.Canceled)
}
