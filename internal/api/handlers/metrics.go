package handlers

import "github.com/prometheus/client_golang/prometheus"

var (
	votesCastTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crowdqr_votes_cast_total",
		Help: "Votes successfully recorded.",
	})
	requestsFiledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crowdqr_requests_filed_total",
		Help: "Song requests successfully created.",
	})
)

func init() {
	prometheus.MustRegister(votesCastTotal, requestsFiledTotal)
}
