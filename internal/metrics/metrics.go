package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для меток
const (
	ResultOK            = "ok"
	ResultAlreadyBooked = "already_booked"
	ResultRejected      = "rejected"
	ResultError         = "error"
)

var (
	// Метрики слотов
	SlotsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coaching_slots_created_total",
			Help: "Общее количество созданных слотов",
		},
	)

	SlotBookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_slot_bookings_total",
			Help: "Попытки бронирования слотов по результату",
		},
		[]string{"result"},
	)

	SlotFeedback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_slot_feedback_total",
			Help: "Попытки записи отзыва по результату",
		},
		[]string{"result"},
	)

	// HTTP метрики
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coaching_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coaching_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordHTTPRequest записывает метрики HTTP запроса
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
