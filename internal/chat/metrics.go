package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_connected_sessions",
		Help: "Number of currently connected sessions",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_commands_total",
		Help: "Total commands processed by kind",
	}, []string{"kind"})

	CommandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "messenger_command_duration_seconds",
		Help:    "Time to process each command kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	BroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messenger_broadcasts_total",
		Help: "Total chat messages broadcast to sessions",
	})

	EvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messenger_evictions_total",
		Help: "Total sessions evicted for inactivity",
	})
)

func init() {
	prometheus.MustRegister(ConnectedSessions)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(EvictionsTotal)
}
