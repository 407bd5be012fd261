package redemption

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gatekeeper/internal/domain/tickets"
)

var (
	ticketScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_scans_total",
		Help: "Total number of ticket redemption attempts by outcome",
	}, []string{"outcome", "reason"})

	ticketScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ticket_scan_duration_seconds",
		Help:    "Duration of ticket redemption attempts in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	auditLogFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticket_scan_audit_failures_total",
		Help: "Audit log writes that failed after a ticket was admitted",
	})
)

func observeScan(result tickets.RedemptionResult, err error, took time.Duration) {
	outcome := string(result.Outcome)
	reason := ""
	if err != nil {
		outcome = "error"
	}
	if result.Rejection != nil {
		reason = string(result.Rejection.Reason)
	}

	ticketScansTotal.WithLabelValues(outcome, reason).Inc()
	ticketScanDuration.WithLabelValues(outcome).Observe(took.Seconds())
}
