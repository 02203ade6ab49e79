package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdqr_hub_broadcasts_total",
			Help: "Realtime frames fanned out to event groups, by event type.",
		},
		[]string{"event"},
	)
	connectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "crowdqr_hub_connected_clients",
			Help: "Currently connected websocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(broadcastsTotal, connectedClients)
}
