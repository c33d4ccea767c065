// Package metrics defines the custom Prometheus metrics of the membership
// API. HTTP request metrics come from echoprometheus; everything here is
// about authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "membership"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - mode: "session", "token", "both" or "unknown" for rejected input
//   - result: "success", "invalid_credentials", "invalid_input" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by mode and result.",
	},
	[]string{"mode", "result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict", "invalid_input" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout requests.",
	},
)

// CredentialChecksTotal counts access-control decisions on protected routes.
// Labels:
//   - source: "session", "token" or "none"
//   - result: "accepted" or "rejected"
var CredentialChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_checks_total",
		Help:      "Total number of credential checks on protected routes.",
	},
	[]string{"source", "result"},
)

// PasswordHashDuration measures bcrypt cost as seen by callers.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuthEventsProcessedTotal counts audit events written by the dispatcher.
// Labels:
//   - type: the event type (e.g. "login_failed")
//   - result: "ok" or "error"
var AuthEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_processed_total",
		Help:      "Total number of audit events processed, by type and result.",
	},
	[]string{"type", "result"},
)

// AuthEventsDroppedTotal counts events discarded because a worker queue was full.
var AuthEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_dropped_total",
		Help:      "Total number of audit events dropped due to a full worker queue.",
	},
)

// AuthEventsQueueDepth tracks pending events per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_events_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
