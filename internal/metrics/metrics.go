// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the domain counters.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeAlready   = "already_checked_in"
	OutcomeDenied    = "denied"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

var (
	// RequestCounter counts HTTP requests by status code, method and route.
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed.
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventflow_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts requests rejected by a rate limiter, per route.
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"path"},
	)

	// Registrations counts registration attempts by outcome.
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CheckIns counts check-in attempts by outcome.
	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	// PassJobs counts entry pass delivery jobs handled by the worker.
	PassJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_pass_jobs_total",
			Help: "Entry pass delivery jobs by result",
		},
		[]string{"result"},
	)

	// RealtimeClients tracks connected realtime feed clients.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventflow_realtime_clients",
			Help: "Number of connected realtime feed clients",
		},
	)
)
