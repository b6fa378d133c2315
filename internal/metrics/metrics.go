// Package metrics exposes the Prometheus collectors of the rate engine.
package metrics

import (
	"time"

	"github.com/SscSPs/fx_rates_service/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fx_rates"

// Backfill stages.
const (
	StageStore   = "store"
	StageRemote  = "remote"
	StageRange   = "range"
	StageRefresh = "refresh"
)

// Outcomes shared by queries, backfills and fetches.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeMiss    = "miss"
	OutcomeTimeout = "timeout"
	OutcomeInvalid = "invalid"
)

// RateMetrics groups the collectors. A nil *RateMetrics records nothing.
type RateMetrics struct {
	queries           *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	backfills         *prometheus.CounterVec
	fetches           *prometheus.CounterVec
	quotesMerged      *prometheus.CounterVec
	consistencyFaults *prometheus.CounterVec
	rejectedQuotes    *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	floorDate         *prometheus.GaugeVec
}

// NewRateMetrics registers the collectors with reg.
func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	factory := promauto.With(reg)
	return &RateMetrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Rate queries by source, frequency and outcome",
		}, []string{"source", "frequency", "outcome"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Rate query latency",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"source", "frequency"}),
		backfills: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfills_total",
			Help:      "Backfill attempts by stage and outcome",
		}, []string{"source", "frequency", "stage", "outcome"}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Calls to the historical rate source",
		}, []string{"source", "frequency", "outcome"}),
		quotesMerged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_merged_total",
			Help:      "Quotes inserted or overwritten in the cache",
		}, []string{"source", "frequency"}),
		consistencyFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_faults_total",
			Help:      "Incoming quotes that disagreed with a cached rate",
		}, []string{"source", "frequency", "currency"}),
		persistenceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed reads and writes against the durable store",
		}, []string{"source", "frequency", "operation"}),
		rejectedQuotes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_quotes_total",
			Help:      "Quotes dropped because their rate was not positive",
		}, []string{"source", "frequency"}),
		floorDate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "floor_date_seconds",
			Help:      "Unix time of the earliest date of complete coverage",
		}, []string{"source", "frequency"}),
	}
}

func (m *RateMetrics) ObserveQuery(source domain.ExchangeRateSource, frequency domain.Frequency, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(string(source), string(frequency), outcome).Inc()
	m.queryDuration.WithLabelValues(string(source), string(frequency)).Observe(elapsed.Seconds())
}

func (m *RateMetrics) Backfill(source domain.ExchangeRateSource, frequency domain.Frequency, stage, outcome string) {
	if m == nil {
		return
	}
	m.backfills.WithLabelValues(string(source), string(frequency), stage, outcome).Inc()
}

func (m *RateMetrics) Fetch(source domain.ExchangeRateSource, frequency domain.Frequency, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(string(source), string(frequency), outcome).Inc()
}

func (m *RateMetrics) Merged(source domain.ExchangeRateSource, frequency domain.Frequency, n int) {
	if m == nil || n == 0 {
		return
	}
	m.quotesMerged.WithLabelValues(string(source), string(frequency)).Add(float64(n))
}

func (m *RateMetrics) ConsistencyFault(q domain.Quote) {
	if m == nil {
		return
	}
	m.consistencyFaults.WithLabelValues(string(q.Source), string(q.Frequency), string(q.Currency)).Inc()
}

func (m *RateMetrics) Rejected(source domain.ExchangeRateSource, frequency domain.Frequency, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rejectedQuotes.WithLabelValues(string(source), string(frequency)).Add(float64(n))
}

func (m *RateMetrics) PersistenceError(source domain.ExchangeRateSource, frequency domain.Frequency, operation string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(string(source), string(frequency), operation).Inc()
}

// Floor records the floor date of a series. The unbounded floor is not exported.
func (m *RateMetrics) Floor(source domain.ExchangeRateSource, frequency domain.Frequency, floor time.Time) {
	if m == nil || floor.Equal(domain.FloorUnbounded) {
		return
	}
	m.floorDate.WithLabelValues(string(source), string(frequency)).Set(float64(floor.Unix()))
}
