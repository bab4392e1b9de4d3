package bookservice

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BooksAdded      prometheus.Counter
	BooksDeleted    prometheus.Counter
	StatusUpdates   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the service collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BooksAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "readinglist_books_added_total",
			Help: "Total number of books added",
		}),
		BooksDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "readinglist_books_deleted_total",
			Help: "Total number of books deleted",
		}),
		StatusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "readinglist_status_updates_total",
			Help: "Total number of status updates by new status",
		}, []string{"status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "readinglist_request_duration_seconds",
			Help:    "Duration of book API requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) IncrementBooksAdded() {
	if m != nil {
		m.BooksAdded.Inc()
	}
}

func (m *Metrics) IncrementBooksDeleted() {
	if m != nil {
		m.BooksDeleted.Inc()
	}
}

func (m *Metrics) IncrementStatusUpdate(status string) {
	if m != nil {
		m.StatusUpdates.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveRequest(route string, code int, start time.Time) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, statusClass(code)).Observe(time.Since(start).Seconds())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
