package balances

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Upsert outcomes.
const (
	outcomeUpdated   = "updated"
	outcomeUnchanged = "unchanged"
	outcomeDeleted   = "deleted"
)

// Metrics for monitoring service.
var (
	addressCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of addresses stored in the trie",
			Name:      "addresses",
			Namespace: "balance_mpt",
		},
	)
	trieVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current trie version",
			Name:      "trie_version",
			Namespace: "balance_mpt",
		},
	)
	upserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of processed upserts by outcome",
			Name:      "upserts_total",
			Namespace: "balance_mpt",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		addressCount,
		trieVersion,
		upserts,
	)
}

func updateTrieMetrics(count int, version uint64) {
	addressCount.Set(float64(count))
	trieVersion.Set(float64(version))
}

func addUpsertMetric(outcome string) {
	upserts.WithLabelValues(outcome).Inc()
}
