package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbgym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pbgym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbgym_scans_total",
			Help: "Total number of badge scans",
		},
		[]string{"result"},
	)

	CurrentOccupancy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pbgym_current_occupancy",
			Help: "Number of people currently inside the gym",
		},
	)

	PassesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pbgym_passes_created_total",
			Help: "Total number of passes purchased",
		},
	)

	PassesDeactivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbgym_passes_deactivated_total",
			Help: "Total number of passes deactivated",
		},
		[]string{"reason"},
	)

	ChargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbgym_charges_total",
			Help: "Total number of payment gateway charges",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pbgym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pbgym_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordScan records one badge scan. result is "entry", "exit" or "rejected".
func RecordScan(result string) {
	ScansTotal.WithLabelValues(result).Inc()
}

func SetOccupancy(count int) {
	CurrentOccupancy.Set(float64(count))
}

func RecordPassCreated() {
	PassesCreatedTotal.Inc()
}

// RecordPassDeactivated records a deactivation. reason is "expired" or
// "payment_failed".
func RecordPassDeactivated(reason string) {
	PassesDeactivatedTotal.WithLabelValues(reason).Inc()
}

// RecordCharge records a gateway charge attempt. result is "success" or
// "failure".
func RecordCharge(result string) {
	ChargesTotal.WithLabelValues(result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
