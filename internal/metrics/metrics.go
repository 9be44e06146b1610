// Package metrics defines the Prometheus collectors the server exports on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "janus",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	VisitorsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "visitors_registered_total",
		Help:      "Visitors successfully registered.",
	})

	VisitCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "visit_code_collisions_total",
		Help:      "Visit-code unique violations that triggered a retry.",
	})

	BadgesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "badges_rendered_total",
		Help:      "Badge renders by outcome (ok, error).",
	}, []string{"outcome"})

	TurnstileEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "turnstile_events_total",
		Help:      "Turnstile entries opened and closed.",
	}, []string{"event"})

	ScansRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "janus",
		Name:      "scans_recorded_total",
		Help:      "Scan log rows by status.",
	}, []string{"status"})
)
