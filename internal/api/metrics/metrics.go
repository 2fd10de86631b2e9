// Package metrics defines and registers all custom Prometheus metrics for the
// PlantPal API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "plantpal"

// Outcome label values for OperationsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// ── Operation metrics ─────────────────────────────────────────────────────────

// OperationsTotal counts dispatched operations.
// Labels:
//   - operation: the operation name (e.g. "addPlant")
//   - outcome: "ok", "error" (domain or storage error in the envelope),
//     or "rejected" (arguments failed to decode or validate)
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of operations handled, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration measures resolver time per operation.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of operation resolution.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: "ADMIN" for the first account, "USER" afterwards
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by assigned role.",
	},
	[]string{"role"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// SpeciesCacheTotal counts catalog cache lookups.
// Label:
//   - result: "hit", "miss", or "error"
var SpeciesCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "species_cache_total",
		Help:      "Total number of species catalog cache lookups, by result.",
	},
	[]string{"result"},
)
