// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StepTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_step_transitions_total",
			Help: "Navigation between wizard steps",
		},
		[]string{"from", "to", "direction"},
	)

	NavigationBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_navigation_blocked_total",
			Help: "Navigation attempts refused by the controller",
		},
		[]string{"step", "reason"},
	)

	ValidityReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_validity_reports_total",
			Help: "Validity reports received from steps",
		},
		[]string{"step", "valid"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_resume_uploads_total",
			Help: "Resume uploads by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_submissions_total",
			Help: "Application submissions by outcome",
		},
		[]string{"outcome"},
	)

	ProfileFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wizard_profile_fetch_duration_seconds",
			Help:    "Duration of applicant profile fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wizard_sessions_active",
			Help: "Number of open wizard sessions",
		},
	)
)

// BoolLabel renders a validity flag as a label value.
func BoolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
