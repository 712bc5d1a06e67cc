package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus metric the engine exports, grouped by subsystem.
type Metrics struct {
	// Signal generation (end-to-end generate_signal requests)
	SignalRequestsTotal *prometheus.CounterVec
	SignalDuration      *prometheus.HistogramVec
	SignalErrorsTotal   *prometheus.CounterVec
	VerdictsByType      *prometheus.CounterVec
	VerdictConfidence   *prometheus.HistogramVec

	// Data Aggregator
	ProviderRequestsTotal *prometheus.CounterVec
	ProviderErrorsTotal   *prometheus.CounterVec
	ProviderDuration      *prometheus.HistogramVec
	CacheHitsTotal        *prometheus.CounterVec
	CacheMissesTotal      *prometheus.CounterVec
	CacheStaleServedTotal *prometheus.CounterVec

	// Agent Panel
	AgentDuration    *prometheus.HistogramVec
	AgentErrorsTotal *prometheus.CounterVec
	AgentScores      *prometheus.HistogramVec

	// Backtest Engine
	BacktestRunsTotal *prometheus.CounterVec
	BacktestDuration  *prometheus.HistogramVec
	BacktestTrades    *prometheus.HistogramVec

	// Persistence
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// Circuit breakers
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
var scoreBuckets = []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1}
var confidenceBuckets = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1}

var globalMetrics *Metrics

// NewMetrics builds and registers every metric under the "signalengine" namespace.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SignalRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "signal", Name: "requests_total",
			Help: "Total number of generate_signal requests.",
		}, []string{"ticker"}),
		SignalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "signal", Name: "duration_seconds",
			Help: "Duration of a signal request end to end.", Buckets: defaultBuckets,
		}, []string{"ticker", "status"}),
		SignalErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "signal", Name: "errors_total",
			Help: "Total number of signal request errors by kind.",
		}, []string{"ticker", "kind"}),
		VerdictsByType: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "verdict", Name: "signal_type_total",
			Help: "Total verdicts produced by signal_type.",
		}, []string{"signal_type"}),
		VerdictConfidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "verdict", Name: "confidence",
			Help: "Distribution of consensus confidence.", Buckets: confidenceBuckets,
		}, []string{"signal_type"}),

		ProviderRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "provider", Name: "requests_total",
			Help: "Total provider calls made by the aggregator.",
		}, []string{"provider", "operation"}),
		ProviderErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "provider", Name: "errors_total",
			Help: "Total provider call errors by kind.",
		}, []string{"provider", "operation", "kind"}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "provider", Name: "duration_seconds",
			Help: "Duration of a single provider call.", Buckets: defaultBuckets,
		}, []string{"provider", "operation"}),
		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "cache", Name: "hits_total",
			Help: "Fresh cache hits.",
		}, []string{"operation"}),
		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "cache", Name: "misses_total",
			Help: "Cache misses.",
		}, []string{"operation"}),
		CacheStaleServedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "cache", Name: "stale_served_total",
			Help: "Stale cache entries served after full chain failure.",
		}, []string{"operation"}),

		AgentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "agent", Name: "duration_seconds",
			Help: "Duration of a single agent's analyze call.", Buckets: defaultBuckets,
		}, []string{"agent"}),
		AgentErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "agent", Name: "errors_total",
			Help: "Total agent failures by kind.",
		}, []string{"agent", "kind"}),
		AgentScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "agent", Name: "raw_score",
			Help: "Distribution of agent raw scores.", Buckets: scoreBuckets,
		}, []string{"agent"}),

		BacktestRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "backtest", Name: "runs_total",
			Help: "Total backtest runs by allocation mode.",
		}, []string{"mode"}),
		BacktestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "backtest", Name: "duration_seconds",
			Help: "Duration of a backtest run.", Buckets: defaultBuckets,
		}, []string{"mode"}),
		BacktestTrades: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "backtest", Name: "trades_per_run",
			Help: "Number of trades produced per backtest run.", Buckets: prometheus.LinearBuckets(0, 5, 10),
		}, []string{"mode"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalengine", Subsystem: "store", Name: "query_duration_seconds",
			Help: "Duration of persistence queries.", Buckets: defaultBuckets,
		}, []string{"operation", "table"}),
		DBQueryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "store", Name: "queries_total",
			Help: "Total persistence queries.",
		}, []string{"operation", "table"}),
		DBErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "store", Name: "errors_total",
			Help: "Total persistence query errors.",
		}, []string{"operation", "table"}),

		CircuitBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signalengine", Subsystem: "circuit_breaker", Name: "state",
			Help: "Breaker state: 0=closed, 1=half-open, 2=open.",
		}, []string{"breaker"}),
		CircuitBreakerTrips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalengine", Subsystem: "circuit_breaker", Name: "trips_total",
			Help: "Total breaker trips.",
		}, []string{"breaker"}),
	}
}

// InitMetrics creates and installs the global metrics instance.
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance, creating it lazily.
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

func (m *Metrics) RecordSignalRequest(ticker string) {
	m.SignalRequestsTotal.WithLabelValues(ticker).Inc()
}

func (m *Metrics) RecordSignalDuration(ticker, status string, d time.Duration) {
	m.SignalDuration.WithLabelValues(ticker, status).Observe(d.Seconds())
}

func (m *Metrics) RecordSignalError(ticker, kind string) {
	m.SignalErrorsTotal.WithLabelValues(ticker, kind).Inc()
}

func (m *Metrics) RecordVerdict(signalType string, confidence float64) {
	m.VerdictsByType.WithLabelValues(signalType).Inc()
	m.VerdictConfidence.WithLabelValues(signalType).Observe(confidence)
}

func (m *Metrics) RecordProviderRequest(provider, operation string) {
	m.ProviderRequestsTotal.WithLabelValues(provider, operation).Inc()
}

func (m *Metrics) RecordProviderError(provider, operation, kind string) {
	m.ProviderErrorsTotal.WithLabelValues(provider, operation, kind).Inc()
}

func (m *Metrics) RecordProviderDuration(provider, operation string, d time.Duration) {
	m.ProviderDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func (m *Metrics) RecordCacheHit(operation string)        { m.CacheHitsTotal.WithLabelValues(operation).Inc() }
func (m *Metrics) RecordCacheMiss(operation string)       { m.CacheMissesTotal.WithLabelValues(operation).Inc() }
func (m *Metrics) RecordCacheStaleServed(operation string) { m.CacheStaleServedTotal.WithLabelValues(operation).Inc() }

func (m *Metrics) RecordAgentDuration(agent string, d time.Duration) {
	m.AgentDuration.WithLabelValues(agent).Observe(d.Seconds())
}

func (m *Metrics) RecordAgentError(agent, kind string) {
	m.AgentErrorsTotal.WithLabelValues(agent, kind).Inc()
}

func (m *Metrics) RecordAgentScore(agent string, score float64) {
	m.AgentScores.WithLabelValues(agent).Observe(score)
}

func (m *Metrics) RecordBacktestRun(mode string, d time.Duration, trades int) {
	m.BacktestRunsTotal.WithLabelValues(mode).Inc()
	m.BacktestDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.BacktestTrades.WithLabelValues(mode).Observe(float64(trades))
}

func (m *Metrics) RecordDBQuery(operation, table string, d time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(d.Seconds())
}

func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

func (m *Metrics) SetCircuitBreakerState(breaker string, state int) {
	m.CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
}

func (m *Metrics) RecordCircuitBreakerTrip(breaker string) {
	m.CircuitBreakerTrips.WithLabelValues(breaker).Inc()
}

// Timer measures elapsed time for one operation and reports it to the
// appropriate metric family on Observe*.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

func (m *Metrics) NewTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

func (t *Timer) ObserveSignal(ticker, status string) {
	t.metrics.RecordSignalDuration(ticker, status, time.Since(t.start))
}

func (t *Timer) ObserveProvider(provider, operation string) {
	t.metrics.RecordProviderDuration(provider, operation, time.Since(t.start))
}

func (t *Timer) ObserveAgent(agent string) {
	t.metrics.RecordAgentDuration(agent, time.Since(t.start))
}

func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
