package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busenjoyer_tickets_booked_total",
		Help: "Number of tickets successfully booked",
	})

	TicketsReturned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busenjoyer_tickets_returned_total",
		Help: "Number of tickets returned",
	})

	BookingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busenjoyer_booking_rejections_total",
		Help: "Bookings rejected by the state machine, by reason",
	}, []string{"reason"})

	CapacityViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "busenjoyer_capacity_violations",
		Help: "Trips whose active ticket count exceeds bus capacity; nonzero means a broken invariant",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "busenjoyer_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
