// Package metrics exposes Prometheus metrics for the forum backend.
//
// A Collector owns its own registry so tests and multiple servers in one
// process do not collide on the global one. All recording methods accept a
// nil *Collector and do nothing, which lets callers treat metrics as optional.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forum"

// Collector holds the application metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	banLookups    *prometheus.CounterVec
	sweepRows     *prometheus.CounterVec
	archives      *prometheus.CounterVec
	events        *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	authAttempts  *prometheus.CounterVec
}

// New creates a Collector registered with registry. A nil registry gets a
// fresh one with the Go runtime and process collectors.
func New(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		banLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ban_lookups_total",
				Help:      "Total number of ban lookups by result.",
			},
			[]string{"result"},
		),

		sweepRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ip_retention_rows_total",
				Help:      "Rows changed by the IP retention sweep.",
			},
			[]string{"target"},
		),

		archives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_archives_total",
				Help:      "Total number of user data archives by result.",
			},
			[]string{"result"},
		),

		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of published events by name and result.",
			},
			[]string{"event", "result"},
		),

		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_dispatch_duration_seconds",
				Help:      "Time spent running the handlers of an event.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event"},
		),

		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of signup and login attempts.",
			},
			[]string{"flow", "result"},
		),
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.banLookups,
		c.sweepRows,
		c.archives,
		c.events,
		c.eventDuration,
		c.authAttempts,
	)

	return c
}

// Registry returns the registry the collector is registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Middleware records request counts and latencies labelled by route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// BanLookup records the result of a ban lookup: "hit", "miss" or "error".
func (c *Collector) BanLookup(result string) {
	if c == nil {
		return
	}
	c.banLookups.WithLabelValues(result).Inc()
}

// SweepRows records rows changed by the retention sweep for target.
func (c *Collector) SweepRows(target string, rows int64) {
	if c == nil || rows <= 0 {
		return
	}
	c.sweepRows.WithLabelValues(target).Add(float64(rows))
}

// Archive records a finished data archive attempt.
func (c *Collector) Archive(err error) {
	if c == nil {
		return
	}
	c.archives.WithLabelValues(result(err)).Inc()
}

// AuthAttempt records a signup or login attempt.
func (c *Collector) AuthAttempt(flow string, err error) {
	if c == nil {
		return
	}
	c.authAttempts.WithLabelValues(flow, result(err)).Inc()
}

// EventPublished records one event dispatch. It satisfies events.Observer.
func (c *Collector) EventPublished(name string, _ int, err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(name, result(err)).Inc()
	c.eventDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
