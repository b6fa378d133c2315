// Package ratesource is the HTTP client of the historical rate API.
//
// Daily rates are served by GET {base}/v1/banks/{bankID}/rates/daily?from=YYYY-MM-DD&to=YYYY-MM-DD,
// weekly, bi-weekly and monthly rates by GET {base}/v1/banks/{bankID}/rates/{frequency}?year=YYYY&month=M.
// Both answer with a rateResponse.
package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/SscSPs/fx_rates_service/internal/core/ports"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 20 * time.Second

// Config describes how to reach the rate API.
type Config struct {
	BaseURL string
	// TokenURL, ClientID and ClientSecret enable the OAuth2 client-credentials flow.
	// Requests are sent unauthenticated when any of them is empty.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// Client implements ports.HistoricalFetcher over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type rateResponse struct {
	Bank      string     `json:"bank"`
	Frequency string     `json:"frequency"`
	Rates     []rateItem `json:"rates"`
}

type rateItem struct {
	Currency string          `json:"currency"`
	Date     string          `json:"date"`
	Rate     decimal.Decimal `json:"rate"`
}

// NewClient constructs a Client. ctx only scopes token requests and may be long-lived.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.TokenURL != "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		// Token requests go through the same timeout-bounded client.
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = timeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

// FetchDaily loads the daily rates of provider dated in [from, to].
func (c *Client) FetchDaily(ctx context.Context, provider domain.ForexProvider, from, to time.Time) ([]domain.Quote, error) {
	query := url.Values{}
	query.Set("from", from.Format(time.DateOnly))
	query.Set("to", to.Format(time.DateOnly))

	return c.fetch(ctx, provider, domain.Daily, query)
}

// FetchPeriod loads the rates of provider at frequency published during year/month.
func (c *Client) FetchPeriod(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, year int, month time.Month) ([]domain.Quote, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(int(month)))

	return c.fetch(ctx, provider, frequency, query)
}

func (c *Client) fetch(ctx context.Context, provider domain.ForexProvider, frequency domain.Frequency, query url.Values) ([]domain.Quote, error) {
	bank := provider.BankID
	if bank == "" {
		bank = strings.ToLower(string(provider.Source))
	}
	endpoint := fmt.Sprintf("%s/v1/banks/%s/rates/%s?%s",
		c.baseURL, url.PathEscape(bank), strings.ToLower(string(frequency)), query.Encode())

	c.logger.Debug("Loading historical rates",
		slog.String("source", string(provider.Source)),
		slog.String("frequency", string(frequency)),
		slog.String("url", endpoint))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("rate api returned %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload rateResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return c.toQuotes(provider, frequency, payload), nil
}

// toQuotes keeps the items that name a supported currency other than the base and carry a positive rate.
func (c *Client) toQuotes(provider domain.ForexProvider, frequency domain.Frequency, payload rateResponse) []domain.Quote {
	quotes := make([]domain.Quote, 0, len(payload.Rates))
	for _, item := range payload.Rates {
		currency, err := domain.ParseCurrencyCode(item.Currency)
		if err != nil || currency == provider.BaseCurrency {
			c.logger.Debug("Skipping rate", slog.String("source", string(provider.Source)), slog.String("currency", item.Currency))
			continue
		}
		date, err := time.Parse(time.DateOnly, item.Date)
		if err != nil || !item.Rate.IsPositive() {
			c.logger.Warn("Skipping malformed rate",
				slog.String("source", string(provider.Source)),
				slog.String("currency", item.Currency),
				slog.String("date", item.Date),
				slog.String("rate", item.Rate.String()))
			continue
		}
		quotes = append(quotes, domain.Quote{
			Source:    provider.Source,
			Frequency: frequency,
			Currency:  currency,
			Date:      date,
			Rate:      item.Rate,
		})
	}
	return quotes
}

var _ ports.HistoricalFetcher = (*Client)(nil)
