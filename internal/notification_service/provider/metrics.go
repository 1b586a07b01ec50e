package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	smsProviderRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notification_service",
			Name:      "sms_provider_request_duration_seconds",
			Help:      "Duration of requests to the SMS transport.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	smsProviderSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Name:      "sms_provider_sends_total",
			Help:      "Total number of SMS send attempts by result.",
		},
		[]string{"provider", "result"}, // result: success, failure
	)
)
