// Package metrics defines the Prometheus collectors of the board API. All
// collectors register with the default registry on import; /metrics serves
// them through promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "board"

// ── Auth metrics ─────────────────────────────────────────────────────────────

// AuthEventsTotal counts auth events drained from the event bus.
// Label:
//   - type: event type (e.g. "login.succeeded", "access.denied")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by type.",
	},
	[]string{"type"},
)

// AuthorizationsTotal counts route guard decisions.
// Label:
//   - result: "allowed", "unauthorized" or "forbidden"
var AuthorizationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorizations_total",
		Help:      "Total number of route authorization decisions, by result.",
	},
	[]string{"result"},
)

// EventsDroppedTotal counts events a slow subscriber missed.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of bus events dropped because a subscriber buffer was full.",
	},
)

// ── HTTP metrics ─────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern (e.g. "/auth/login"), "unmatched" otherwise
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from first byte read to handler return.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
