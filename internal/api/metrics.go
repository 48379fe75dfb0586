package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/quitlog/internal/achievements"
)

// Metrics holds the server's Prometheus collectors on a private registry.
// It also observes reconciliations run by the journey service.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	reconciles      *prometheus.CounterVec
	writeFailures   prometheus.Counter
	unlocks         prometheus.Counter
	entriesLogged   prometheus.Counter
}

// NewMetrics registers every collector. cacheCounts, when set, exposes the
// stats cache hit and miss counters.
func NewMetrics(cacheCounts func() (hits, misses uint64)) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quitlog",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		reconciles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "achievement_reconciles_total",
			Help:      "Achievement reconciliations by outcome.",
		}, []string{"result"}),
		writeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "achievement_write_failures_total",
			Help:      "Achievement record writes that failed.",
		}),
		unlocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "achievements_unlocked_total",
			Help:      "Achievements that transitioned to completed.",
		}),
		entriesLogged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "entries_logged_total",
			Help:      "Smoking entries logged through the API.",
		}),
	}

	if cacheCounts != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "stats_cache_hits_total",
			Help:      "Stats cache hits.",
		}, func() float64 {
			hits, _ := cacheCounts()
			return float64(hits)
		})
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "quitlog",
			Name:      "stats_cache_misses_total",
			Help:      "Stats cache misses.",
		}, func() float64 {
			_, misses := cacheCounts()
			return float64(misses)
		})
	}
	reg.MustRegister(collectors.NewGoCollector())
	return m
}

// Reconciled implements journey.Observer.
func (m *Metrics) Reconciled(res achievements.Result, err error) {
	var batch *achievements.BatchError
	switch {
	case err == nil:
		m.reconciles.WithLabelValues("ok").Inc()
	case errors.As(err, &batch):
		m.reconciles.WithLabelValues("partial").Inc()
		m.writeFailures.Add(float64(len(batch.Failures)))
	default:
		m.reconciles.WithLabelValues("error").Inc()
	}
	m.unlocks.Add(float64(len(res.NewlyCompleted)))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records request latency by route pattern.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
