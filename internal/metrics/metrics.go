package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/feedlog/internal/feeding"
)

var (
	feedingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedlog",
			Name:      "feeding_events_total",
			Help:      "Feeding mutations handled, partitioned by type.",
		},
		[]string{"type"},
	)

	feedingsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedlog",
			Name:      "feedings_deleted_total",
			Help:      "Feedings removed by delete and reset operations.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedlog",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, partitioned by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedlog",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"route"},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "feedlog",
			Name:      "stream_clients",
			Help:      "Connected live-update websocket clients.",
		},
	)
)

// Register attaches feedlog collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		feedingEventsTotal,
		feedingsDeletedTotal,
		httpRequestsTotal,
		httpRequestSeconds,
		streamClients,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveFeedingEvent is a feeding.Listener.
func ObserveFeedingEvent(e feeding.Event) {
	feedingEventsTotal.WithLabelValues(string(e.Type)).Inc()
	if e.Type == feeding.EventDeleted || e.Type == feeding.EventReset {
		feedingsDeletedTotal.Add(float64(e.Affected))
	}
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	if duration < 0 {
		duration = 0
	}
	httpRequestSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// SetStreamClients reports the current websocket client count.
func SetStreamClients(n int) {
	streamClients.Set(float64(n))
}
