package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently registered sessions",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total lines dispatched by kind",
	}, []string{"type"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_event_processing_seconds",
		Help:    "Time to route and deliver each line kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_delivery_failures_total",
		Help: "Writes that failed because the recipient connection was gone or broken",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(EventProcessingDuration)
	prometheus.MustRegister(DeliveryFailures)
}
