package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectedClients = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gala_connected_clients",
			Help: "Currently connected websocket clients by role",
		},
		[]string{"role"},
	)
	ActionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_actions_total",
			Help: "Player actions processed by the round engine",
		},
		[]string{"type"},
	)
	BroadcastsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_broadcasts_total",
			Help: "Messages fanned out to audience groups",
		},
		[]string{"group"},
	)
	SnapshotFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gala_snapshot_failures_total",
			Help: "Best-effort state snapshots that failed to persist",
		},
	)
	Evictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gala_evictions_total",
			Help: "Connections evicted by a reconnect for the same identity",
		},
	)
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(ActionsProcessed)
	prometheus.MustRegister(BroadcastsSent)
	prometheus.MustRegister(SnapshotFailures)
	prometheus.MustRegister(Evictions)
}
