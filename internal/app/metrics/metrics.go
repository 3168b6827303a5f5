package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bridge_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bridge_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	bridgeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge_layer",
			Subsystem: "bridge",
			Name:      "operations_total",
			Help:      "Total number of bridge operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	sweepExecutions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bridge_layer",
			Subsystem: "bridge",
			Name:      "swept_transfers_total",
			Help:      "Total number of transfers finalized by the sweeper.",
		},
	)

	totalLocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bridge_layer",
			Subsystem: "bridge",
			Name:      "total_locked",
			Help:      "Gross value currently held in pooled custody.",
		},
	)

	totalBridged = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bridge_layer",
			Subsystem: "bridge",
			Name:      "total_bridged",
			Help:      "Cumulative value released by inbound claims.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bridgeOperations,
		sweepExecutions,
		totalLocked,
		totalBridged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordOperation counts one bridge operation by outcome.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	bridgeOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordTotals updates the value gauges from the bridge counters.
func RecordTotals(locked, bridged uint64) {
	totalLocked.Set(float64(locked))
	totalBridged.Set(float64(bridged))
}

// RecordSweep counts transfers finalized by the sweeper.
func RecordSweep(executed int) {
	if executed > 0 {
		sweepExecutions.Add(float64(executed))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "transfers":
		if len(parts) == 1 {
			return "/transfers"
		}
		if len(parts) == 2 {
			return "/transfers/:id"
		}
		return "/transfers/:id/" + parts[2]
	case "claims":
		if len(parts) >= 2 {
			return "/claims/:external_tx_id"
		}
		return "/claims"
	case "validators":
		if len(parts) >= 2 {
			return "/validators/:account"
		}
		return "/validators"
	case "proofs":
		if len(parts) >= 2 {
			return "/proofs/:id"
		}
		return "/proofs"
	default:
		return "/" + parts[0]
	}
}
