package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings created, by outcome",
		},
		[]string{"status"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions applied",
		},
		[]string{"to"},
	)

	paymentsInitialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initialized_total",
			Help: "Payment initializations, by outcome",
		},
		[]string{"status"},
	)

	paymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verify calls, by reported status",
		},
		[]string{"status"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_duration_seconds",
			Help:    "Round-trip duration of payment processor calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	listingCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listings_total",
			Help: "Listings currently in the directory",
		},
	)
)

// Metrics is a thin facade over the process-wide prometheus collectors.
type Metrics struct{}

func (Metrics) BookingCreated(status string) {
	bookingsCreated.WithLabelValues(status).Inc()
}

func (Metrics) BookingTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

func (Metrics) PaymentInitialized(status string) {
	paymentsInitialized.WithLabelValues(status).Inc()
}

func (Metrics) PaymentVerified(status string) {
	paymentVerifications.WithLabelValues(status).Inc()
}

func (Metrics) GatewayCall(operation string, duration time.Duration) {
	gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (Metrics) SetListingCount(n int64) {
	listingCount.Set(float64(n))
}
