package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportSendsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "notification_service",
		Name:      "report_sends_total",
		Help:      "Expiration report emails by mailer and result.",
	},
	[]string{"mailer", "result"},
)
