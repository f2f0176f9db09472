package votes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notehub_client",
			Name:      "votes_total",
			Help:      "Vote attempts by outcome.",
		},
		[]string{"outcome"},
	)

	votesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "notehub_client",
			Name:      "votes_in_flight",
			Help:      "Votes sent and not yet settled.",
		},
	)
)
