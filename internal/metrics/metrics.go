package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AccessDecisions counts module answers by module name and outcome
// (grant/deny/abstain).
var AccessDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "record_access_module_decisions_total",
		Help: "Authorization module decisions by module and outcome",
	},
	[]string{"module", "outcome"},
)

// EffectiveLevels counts effective access-level resolutions by level name.
var EffectiveLevels = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "record_access_effective_level_total",
		Help: "Effective access level resolutions by level",
	},
	[]string{"level"},
)

// StorageFailures counts failed reads and writes against the record store.
var StorageFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "record_access_storage_failures_total",
		Help: "Record store failures by operation",
	},
	[]string{"operation"},
)
