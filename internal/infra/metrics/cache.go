package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(cacheRequestsTotal)
}

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups by key family and result (hit/miss).",
	},
	[]string{"family", "result"},
)

func IncCacheRequest(family, result string) {
	cacheRequestsTotal.WithLabelValues(norm(family), norm(result)).Inc()
}
