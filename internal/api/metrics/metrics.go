// Package metrics defines and registers the custom Prometheus metrics of the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - op: "register" or "login"
//   - outcome: "success", "invalid", "duplicate", "locked" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"op", "outcome"},
)

// TokenFailuresTotal counts rejected bearer tokens.
// Label:
//   - kind: "missing", "malformed", "bad_signature", "expired" or "claims_mismatch"
var TokenFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_failures_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"kind"},
)

// LoginLockoutsTotal counts logins refused because the email is locked out.
var LoginLockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_lockouts_total",
		Help:      "Total number of logins refused by the failure throttle.",
	},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts create, update and delete requests.
// Labels:
//   - op: "create", "update" or "delete"
//   - outcome: "success", "replayed", "invalid", "forbidden", "not_found", "conflict" or "error"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of product mutations, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// ProductEventsTotal counts product events handed to the broker.
// Label:
//   - result: "published", "failed" or "dropped"
var ProductEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_events_total",
		Help:      "Total number of product events, by delivery result.",
	},
	[]string{"result"},
)

// ObserveProductEvent matches the observer signature of queue.NewDispatcher.
func ObserveProductEvent(result string) {
	ProductEventsTotal.WithLabelValues(result).Inc()
}
