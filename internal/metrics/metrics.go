// Package metrics exposes questline's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "questline",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questline",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "questline",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	roadmapGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questline",
			Name:      "roadmap_generations_total",
			Help:      "Roadmap generation requests by outcome (created, reused, failed).",
		},
		[]string{"domain", "outcome"},
	)

	oracleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "questline",
			Subsystem: "oracle",
			Name:      "request_duration_seconds",
			Help:      "Duration of content oracle requests.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"outcome"},
	)

	nodeTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questline",
			Name:      "node_transitions_total",
			Help:      "Committed node status transitions.",
		},
		[]string{"from", "to"},
	)

	rewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questline",
			Name:      "rewards_granted_total",
			Help:      "Experience points and coins granted for completed nodes.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		roadmapGenerations,
		oracleDuration,
		nodeTransitions,
		rewardsGranted,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latencies for next.
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

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordGeneration counts a generation request. outcome is created, reused or failed.
func RecordGeneration(domain, outcome string) {
	if domain == "" {
		domain = "unknown"
	}
	roadmapGenerations.WithLabelValues(domain, outcome).Inc()
}

// RecordOracleRequest observes one content oracle call.
func RecordOracleRequest(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	oracleDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordTransition counts a committed node status change.
func RecordTransition(from, to string) {
	nodeTransitions.WithLabelValues(from, to).Inc()
}

// RecordReward counts granted xp and coins.
func RecordReward(xp, coins int) {
	if xp > 0 {
		rewardsGranted.WithLabelValues("xp").Add(float64(xp))
	}
	if coins > 0 {
		rewardsGranted.WithLabelValues("coins").Add(float64(coins))
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

// canonicalPath collapses identifiers so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if _, err := uuid.Parse(p); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
