package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the console's client-side collectors
type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AuthRejections   prometheus.Counter
	ImplicitLogouts  prometheus.Counter
	StaleDiscarded   *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	TransitionDenied *prometheus.CounterVec
	Navigations      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves them
// unregistered, which tests use to keep runs independent.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "api_requests_total",
			Help:      "Requests sent to the system of record, by resource and outcome.",
		}, []string{"resource", "method", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hms_console",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of requests to the system of record.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		AuthRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "auth_rejections_total",
			Help:      "Responses rejecting the session credential.",
		}),
		ImplicitLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "implicit_logouts_total",
			Help:      "Sessions ended because the server rejected the credential.",
		}),
		StaleDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "list_stale_results_discarded_total",
			Help:      "List responses dropped because a newer request superseded them.",
		}, []string{"list"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "workflow_transitions_total",
			Help:      "Status transitions confirmed by the server.",
		}, []string{"entity", "to"}),
		TransitionDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "workflow_transitions_denied_total",
			Help:      "Status transitions rejected before any request was made.",
		}, []string{"entity"}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms_console",
			Name:      "guard_decisions_total",
			Help:      "Access guard decisions by state.",
		}, []string{"state"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Requests,
			m.RequestDuration,
			m.AuthRejections,
			m.ImplicitLogouts,
			m.StaleDiscarded,
			m.Transitions,
			m.TransitionDenied,
			m.Navigations,
		)
	}
	return m
}

// Noop returns unregistered collectors
func Noop() *Metrics {
	return New(nil)
}
