package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchOutcomesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "dispatch_outcomes_total",
			Help:      "Order-ready notification outcomes per recipient.",
		},
		[]string{"status", "reason"}, // status: sent, skipped, failed
	)

	remindersCreatedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "reminders_created_total",
			Help:      "Reminder records created, by send result.",
		},
		[]string{"result"},
	)

	remindersDeletedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "reminders_deleted_total",
			Help:      "Reminder records deleted on request.",
		},
	)

	remindersExpiredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "reminders_expired_total",
			Help:      "Reminder records moved to expired by the sweep.",
		},
	)

	sweepDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notification_service",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of expiration sweeps.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	inboundMessagesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "inbound_messages_total",
			Help:      "Inbound SMS replies by classified intent.",
		},
		[]string{"intent"},
	)

	eventsPublishedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "events_published_total",
			Help:      "Domain events handed to the event bus.",
		},
		[]string{"subject", "result"},
	)
)
