package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

// Collector exposes Prometheus metrics for ingestion runs and inbound HTTP
// requests on a private registry. It implements ingestion.RunObserver.
type Collector struct {
	registry        *prometheus.Registry
	eventDecisions  *prometheus.CounterVec
	sourceFailures  *prometheus.CounterVec
	runDuration     prometheus.Histogram
	runsTotal       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	eventDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familyscout",
		Subsystem: "ingestion",
		Name:      "event_decisions_total",
		Help:      "Per-source counts of event write decisions.",
	}, []string{"source", "decision"})

	sourceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familyscout",
		Subsystem: "ingestion",
		Name:      "source_failures_total",
		Help:      "Total number of source adapter failures.",
	}, []string{"source"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "familyscout",
		Subsystem: "ingestion",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of full ingestion runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familyscout",
		Subsystem: "ingestion",
		Name:      "runs_total",
		Help:      "Total number of ingestion runs by final state.",
	}, []string{"state"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "familyscout",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familyscout",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	for _, c := range []prometheus.Collector{
		eventDecisions, sourceFailures, runDuration, runsTotal, requestDuration, requestTotal,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	collector := &Collector{
		registry:        registry,
		eventDecisions:  eventDecisions,
		sourceFailures:  sourceFailures,
		runDuration:     runDuration,
		runsTotal:       runsTotal,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}

	return collector, nil
}

// ObserveDecision records the outcome of one event write.
func (c *Collector) ObserveDecision(source string, decision ingestion.Decision) {
	c.eventDecisions.WithLabelValues(source, decision.String()).Inc()
}

// ObserveSourceFailure records a source adapter that produced no events.
func (c *Collector) ObserveSourceFailure(source string) {
	c.sourceFailures.WithLabelValues(source).Inc()
}

// ObserveRun records the final state and duration of a full run.
func (c *Collector) ObserveRun(state models.RunState, duration time.Duration) {
	c.runsTotal.WithLabelValues(string(state)).Inc()
	c.runDuration.Observe(duration.Seconds())
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
