// Package metrics holds the prometheus collectors for match sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_active_sessions",
			Help: "Connected remote match sessions",
		},
	)
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_state_transitions_total",
			Help: "Lifecycle transitions by source and target state",
		},
		[]string{"from", "to"},
	)
	PointsScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_points_scored_total",
			Help: "Points scored by player slot",
		},
		[]string{"player"},
	)
	MatchesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_matches_finished_total",
			Help: "Finished matches by winning slot",
		},
		[]string{"winner"},
	)
	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duel_match_duration_seconds",
			Help:    "Time from GO to a win",
			Buckets: []float64{5, 10, 20, 30, 60, 120, 300},
		},
	)
	AssetLoadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_asset_load_failures_total",
			Help: "Asset loads that left a match in the loading state",
		},
	)
	FramesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_frames_sent_total",
			Help: "Frame batches queued to remote clients",
		},
	)
	FramesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_frames_dropped_total",
			Help: "Frame batches dropped because the client send buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(Transitions)
	prometheus.MustRegister(PointsScored)
	prometheus.MustRegister(MatchesFinished)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(AssetLoadFailures)
	prometheus.MustRegister(FramesSent)
	prometheus.MustRegister(FramesDropped)
}
