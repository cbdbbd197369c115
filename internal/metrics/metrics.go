package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salonbook"

var (
	once sync.Once

	availabilityLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_loads_total",
			Help:      "Count of stylist availability loads by status.",
		},
		[]string{"status"},
	)

	availabilityLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_load_duration_seconds",
			Help:      "Time spent fetching and shaping availability.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart operations by kind and result.",
		},
		[]string{"op", "result"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking drafts and submissions by status.",
		},
		[]string{"status"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to the salon backend.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "result"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live booking sessions.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			availabilityLoads,
			availabilityLoadDuration,
			cartOperations,
			bookings,
			httpRequests,
			backendDuration,
			sessionsActive,
		)
	})
}

func IncAvailabilityLoad(status string) {
	availabilityLoads.WithLabelValues(status).Inc()
}

func ObserveAvailabilityLoad(d time.Duration) {
	availabilityLoadDuration.Observe(d.Seconds())
}

func IncCartOperation(op, result string) {
	cartOperations.WithLabelValues(op, result).Inc()
}

func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

func IncHTTPRequest(method, route string, code int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func ObserveBackendRequest(endpoint string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	backendDuration.WithLabelValues(endpoint, result).Observe(d.Seconds())
}

func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}
