package ratesource

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ecb = domain.ForexProvider{
	Source:               domain.SourceECB,
	BaseCurrency:         domain.EUR,
	QuoteConvention:      domain.Indirect,
	BankID:               "ecb",
	SupportedFrequencies: []domain.Frequency{domain.Daily, domain.Monthly},
}

func TestClient_FetchDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/banks/ecb/rates/daily", req.URL.Path)
		assert.Equal(t, "2024-01-01", req.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-31", req.URL.Query().Get("to"))
		_, _ = rw.Write([]byte(`{
			"bank": "ecb",
			"frequency": "daily",
			"rates": [
				{"currency": "USD", "date": "2024-01-10", "rate": "1.0987"},
				{"currency": "gbp", "date": "2024-01-10", "rate": 0.8612},
				{"currency": "EUR", "date": "2024-01-10", "rate": "1"},
				{"currency": "XXX", "date": "2024-01-10", "rate": "3"},
				{"currency": "JPY", "date": "10/01/2024", "rate": "160"},
				{"currency": "CHF", "date": "2024-01-10", "rate": "0"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(context.Background(), Config{BaseURL: server.URL + "/"}, slog.Default())
	quotes, err := client.FetchDaily(context.Background(), ecb,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, quotes, 2, "base currency, unknown codes and malformed items are dropped")
	assert.Equal(t, domain.USD, quotes[0].Currency)
	assert.Equal(t, "1.0987", quotes[0].Rate.String())
	assert.Equal(t, domain.Daily, quotes[0].Frequency)
	assert.Equal(t, domain.SourceECB, quotes[0].Source)
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), quotes[0].Date)
	assert.Equal(t, domain.GBP, quotes[1].Currency)
}

func TestClient_FetchPeriod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/banks/ecb/rates/monthly", req.URL.Path)
		assert.Equal(t, "2024", req.URL.Query().Get("year"))
		assert.Equal(t, "2", req.URL.Query().Get("month"))
		_, _ = rw.Write([]byte(`{"rates": [{"currency": "USD", "date": "2024-02-29", "rate": "1.08"}]}`))
	}))
	defer server.Close()

	client := NewClient(context.Background(), Config{BaseURL: server.URL}, nil)
	quotes, err := client.FetchPeriod(context.Background(), ecb, domain.Monthly, 2024, time.February)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, domain.Monthly, quotes[0].Frequency)
}

func TestClient_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	quotes, err := NewClient(context.Background(), Config{BaseURL: server.URL}, nil).
		FetchPeriod(context.Background(), ecb, domain.Monthly, 1990, time.January)
	assert.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(context.Background(), Config{BaseURL: server.URL}, nil).
		FetchDaily(context.Background(), ecb, time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, _ = rw.Write([]byte(`{"rates": [`))
	}))
	defer server.Close()

	_, err := NewClient(context.Background(), Config{BaseURL: server.URL}, nil).
		FetchDaily(context.Background(), ecb, time.Now(), time.Now())
	assert.ErrorContains(t, err, "decoding json")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = rw.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(context.Background(), Config{BaseURL: server.URL, Timeout: 5 * time.Millisecond}, nil)
	_, err := client.FetchDaily(context.Background(), ecb, time.Now(), time.Now())
	assert.Error(t, err)
}

func TestClient_ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	var tokenRequests atomic.Int32
	mux.HandleFunc("/oauth/token", func(rw http.ResponseWriter, req *http.Request) {
		tokenRequests.Add(1)
		assert.NoError(t, req.ParseForm())
		assert.Equal(t, "client_credentials", req.Form.Get("grant_type"))
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`{"access_token": "s3cr3t", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/v1/banks/ecb/rates/daily", func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer s3cr3t", req.Header.Get("Authorization"))
		_, _ = rw.Write([]byte(`{"rates": []}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(context.Background(), Config{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "fx",
		ClientSecret: "secret",
	}, nil)

	for i := 0; i < 2; i++ {
		_, err := client.FetchDaily(context.Background(), ecb, time.Now(), time.Now())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), tokenRequests.Load(), "the token is reused until it expires")
}
