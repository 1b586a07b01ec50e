package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepTriggersCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "sweep_triggers_total",
			Help:      "Total number of expiration sweep triggers, by outcome.",
		},
		[]string{"status"}, // completed, skipped, failed
	)
	sweepTriggerDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "sweep_trigger_duration_seconds",
			Help:      "Round trip of the sweep endpoint call.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	sweepExpiredGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "last_sweep_expired_reminders",
			Help:      "Reminders expired by the most recent completed sweep.",
		},
	)
)
