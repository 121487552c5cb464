package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carexyz_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_bookings_total",
			Help: "Booking creation attempts by outcome",
		},
		[]string{"service_id", "outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carexyz_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	BookingStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_booking_status_updates_total",
			Help: "Booking status changes by target status",
		},
		[]string{"status"},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_checkout_sessions_total",
			Help: "Checkout sessions requested from the payment gateway",
		},
		[]string{"outcome"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_payments_total",
			Help: "Paid transitions by confirmation source and outcome",
		},
		[]string{"source", "outcome"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_webhook_events_total",
			Help: "Payment gateway webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_notification_failures_total",
			Help: "Notifications that failed or timed out",
		},
		[]string{"kind"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carexyz_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carexyz_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(serviceID, outcome string) {
	BookingsTotal.WithLabelValues(serviceID, outcome).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordStatusUpdate(status string) {
	BookingStatusUpdatesTotal.WithLabelValues(status).Inc()
}

func RecordCheckoutSession(outcome string) {
	CheckoutSessionsTotal.WithLabelValues(outcome).Inc()
}

func RecordPayment(source, outcome string) {
	PaymentsTotal.WithLabelValues(source, outcome).Inc()
}

func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func RecordNotificationFailure(kind string) {
	NotificationFailuresTotal.WithLabelValues(kind).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
