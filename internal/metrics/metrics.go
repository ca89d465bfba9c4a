// Package metrics defines and registers all custom Prometheus metrics for the
// QuoteGarden client core. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init; the devstub exposes them on /metrics, and embedding
// applications may mount promhttp themselves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quotegarden"

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheReads counts query-cache reads.
// Labels:
//   - query: the logical query key (e.g. "auth/me")
//   - result: "hit" (settled value served) or "miss" (fetch issued)
var CacheReads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_reads_total",
		Help:      "Total number of query cache reads, by query and hit/miss.",
	},
	[]string{"query", "result"},
)

// CacheInvalidations counts explicit invalidations, the resynchronization
// trigger after every confirmed mutation.
var CacheInvalidations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of query cache invalidations, by query.",
	},
	[]string{"query"},
)

// ── Synchronization metrics ───────────────────────────────────────────────────

// SessionRefreshes counts settled current-user fetches.
// Label:
//   - result: "present", "absent", or "error"
var SessionRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Total number of settled current-user fetches, by result.",
	},
	[]string{"result"},
)

// SettingsRefreshes counts settings poll attempts.
// Label:
//   - result: "ok" (snapshot replaced) or "error" (discarded, fallback kept)
var SettingsRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_refreshes_total",
		Help:      "Total number of public settings poll attempts, by result.",
	},
	[]string{"result"},
)

// ── Economy metrics ───────────────────────────────────────────────────────────

// EconomySubmissions counts terminal code submissions.
// Labels:
//   - action: "redeem" or "referral"
//   - result: "success", "declined", "transport", or "invalid"
var EconomySubmissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "economy_submissions_total",
		Help:      "Total number of terminal code submissions, by action and result.",
	},
	[]string{"action", "result"},
)

// EconomyRefusals counts submissions refused client-side because an
// identical-kind submission was still in flight.
var EconomyRefusals = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "economy_refusals_total",
		Help:      "Total number of submissions refused while one was in flight, by action.",
	},
	[]string{"action"},
)

// SubmissionDuration measures a code submission from guard acquisition to a
// terminal outcome.
// Label:
//   - action: "redeem" or "referral"
var SubmissionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of code submissions from acceptance to terminal outcome.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"action"},
)
