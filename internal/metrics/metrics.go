package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_messages_sent_total",
		Help: "Messages accepted by the message store.",
	})
	NotificationsFanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_notifications_fanned_total",
		Help: "Notifications created by fan-out.",
	})
	PushDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_push_dispatched_total",
		Help: "Notifications delivered to the push webhook.",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
