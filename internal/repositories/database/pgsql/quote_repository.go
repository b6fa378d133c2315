package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/apperrors"
	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rates_service/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_service/internal/models"
	"github.com/SscSPs/fx_rates_service/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertQuoteSQL = `
		INSERT INTO fx_quotes (
			source, frequency, currency_code, date_effective, rate, created_at, last_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source, frequency, currency_code, date_effective)
		DO UPDATE SET rate = EXCLUDED.rate, last_updated_at = EXCLUDED.last_updated_at
		WHERE fx_quotes.rate IS DISTINCT FROM EXCLUDED.rate`

	selectQuotesSQL = `
		SELECT source, frequency, currency_code, date_effective, rate, created_at, last_updated_at
		FROM fx_quotes
		WHERE date_effective >= $1 AND date_effective < $2
		ORDER BY date_effective, source, frequency, currency_code`

	selectPegsSQL = `
		SELECT currency_code, pegged_to, rate
		FROM fx_pegged_currencies
		ORDER BY currency_code`
)

// PgxQuoteRepository implements portsrepo.QuoteRepositoryFacade using pgxpool.
type PgxQuoteRepository struct {
	BaseRepository
	now func() time.Time
}

func newPgxQuoteRepository(pool *pgxpool.Pool) *PgxQuoteRepository {
	return &PgxQuoteRepository{
		BaseRepository: BaseRepository{Pool: pool},
		now:            time.Now,
	}
}

// LoadQuotes retrieves every quote dated in [minDate, maxDate).
func (r *PgxQuoteRepository) LoadQuotes(ctx context.Context, minDate, maxDate time.Time) ([]domain.Quote, error) {
	rows, err := r.Pool.Query(ctx, selectQuotesSQL, domain.NormalizeDate(minDate), domain.NormalizeDate(maxDate))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load quotes", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var m models.Quote
		if err := rows.Scan(&m.Source, &m.Frequency, &m.CurrencyCode, &m.DateEffective, &m.Rate, &m.CreatedAt, &m.LastUpdatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan quote", err)
		}
		quotes = append(quotes, mapping.ToDomainQuote(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate quotes", err)
	}
	return quotes, nil
}

// SaveQuotes upserts quotes in a single transaction.
func (r *PgxQuoteRepository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	now := r.now().UTC()
	batch := &pgx.Batch{}
	for _, q := range quotes {
		m := mapping.ToModelQuote(q, now)
		batch.Queue(upsertQuoteSQL, m.Source, m.Frequency, m.CurrencyCode, m.DateEffective, m.Rate, m.CreatedAt, m.LastUpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to save quotes", err)
	}
	return r.Commit(ctx, tx)
}

// LoadPeggedCurrencies retrieves the pegs stored alongside the quotes.
func (r *PgxQuoteRepository) LoadPeggedCurrencies(ctx context.Context) ([]domain.PeggedCurrency, error) {
	rows, err := r.Pool.Query(ctx, selectPegsSQL)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load pegged currencies", err)
	}
	defer rows.Close()

	var pegs []domain.PeggedCurrency
	for rows.Next() {
		var m models.PeggedCurrency
		if err := rows.Scan(&m.CurrencyCode, &m.PeggedTo, &m.Rate); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan pegged currency", err)
		}
		pegs = append(pegs, mapping.ToDomainPeggedCurrency(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate pegged currencies", err)
	}
	return pegs, nil
}

var (
	_ portsrepo.QuoteRepositoryFacade = (*PgxQuoteRepository)(nil)
	_ portsrepo.TransactionManager    = (*PgxQuoteRepository)(nil)
)
