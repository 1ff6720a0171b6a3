// Package metrics exposes Prometheus metrics for generations, exports and
// the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/mhpenta/designgen"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records metrics. Observe is a designgen.Observer, so a
// collector is attached to a controller with Subscribe or WithObserver.
type Collector struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	generationsActive  prometheus.Gauge

	exportsTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	now     func() time.Time
	mu      sync.Mutex
	started map[string]time.Time
}

// NewCollector registers the collector's metrics with reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		now:     time.Now,
		started: make(map[string]time.Time),
	}

	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations by outcome (started, succeeded, failed)",
		},
		[]string{"status"},
	)

	c.generationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time from an accepted generate to its result",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	c.generationsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generations_in_flight",
			Help:      "Generations waiting on the image provider",
		},
	)

	c.exportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Design exports by backend and status",
		},
		[]string{"backend", "status"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return c
}

// Observe tracks generation lifecycles from controller views.
func (c *Collector) Observe(v designgen.View) {
	if v.GenerationID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start, running := c.started[v.GenerationID]
	switch v.Phase {
	case designgen.PhaseGenerating:
		if running {
			return
		}
		c.started[v.GenerationID] = c.now()
		c.generationsTotal.WithLabelValues("started").Inc()
		c.generationsActive.Inc()

	case designgen.PhaseSucceeded, designgen.PhaseFailed:
		if !running {
			return
		}
		delete(c.started, v.GenerationID)
		c.generationsTotal.WithLabelValues(v.Phase.String()).Inc()
		c.generationsActive.Dec()
		c.generationDuration.Observe(c.now().Sub(start).Seconds())
	}
}

// RecordExport counts an export attempt.
func (c *Collector) RecordExport(backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.exportsTotal.WithLabelValues(backend, status).Inc()
}

// Middleware records request counts and latencies labelled by the mux
// route template.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := c.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		c.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		c.httpRequestDuration.WithLabelValues(r.Method, route).Observe(c.now().Sub(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
