// Package metrics defines and registers all custom Prometheus metrics for the
// CortexBuild auth service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at init time and are
// exposed through the /metrics endpoint wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cortexbuild"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure" (failures are not broken down further)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts token checks performed by the auth gate.
// Label:
//   - result: "valid", "invalid", "revoked", or "missing"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// RateLimitDecisionsTotal counts rate limiter outcomes.
// Label:
//   - decision: "allowed" or "rejected"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_decisions_total",
		Help:      "Total number of rate limit decisions, by outcome.",
	},
	[]string{"decision"},
)

// APIKeyAuthTotal counts service-to-service authentication attempts.
// Label:
//   - result: "accepted" or "rejected"
var APIKeyAuthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "apikey_auth_total",
		Help:      "Total number of API key authentication attempts, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
