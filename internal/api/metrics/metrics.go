// Package metrics defines all custom Prometheus metrics for the admin
// dashboard gateway. It is the single source of truth for metric names,
// labels, and help strings. Metrics register themselves with the default
// registry via promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// LoginsTotal counts login attempts through the gateway.
// Label:
//   - outcome: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts access guard decisions on guarded routes.
// Label:
//   - decision: "allowed" or "denied"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by decision.",
	},
	[]string{"decision"},
)

// FormSubmissionsTotal counts form submissions driven through the gateway.
// Labels:
//   - resource: the resource the form edits (e.g. "user")
//   - outcome: "succeeded", "validation_failed", "conflict", "failed"
var FormSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_submissions_total",
		Help:      "Total number of form submissions, by resource and outcome.",
	},
	[]string{"resource", "outcome"},
)

// SubmissionDuration measures one submission end-to-end, including the
// upstream call.
// Label:
//   - resource: the resource the form edits
var SubmissionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of form submissions from validation to upstream response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"resource"},
)

// OpenForms tracks the number of form instances currently held open.
var OpenForms = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_forms",
		Help:      "Current number of open form instances in the registry.",
	},
)
