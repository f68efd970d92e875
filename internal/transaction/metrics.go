// internal/transaction/metrics.go
package transaction

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	sentCounter       prometheus.Counter
	confirmedCounter  prometheus.Counter
	rejectedCounter   prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics registers the transaction metrics exactly once; every
// caller shares the same collectors.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sentCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpilot_tx_sent_total",
			Help: "Total number of transactions sent",
		})
		confirmedCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpilot_tx_confirmed_total",
			Help: "Total number of confirmed transactions",
		})
		rejectedCounter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpilot_tx_rejected_total",
			Help: "Total number of transactions rejected on-chain",
		})
		durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchpilot_tx_duration_seconds",
			Help:    "Send-to-confirmation duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.5, 20),
		})

		prometheus.MustRegister(sentCounter, confirmedCounter, rejectedCounter, durationHistogram)

		sharedMetrics = &Metrics{
			sentCounter:       sentCounter,
			confirmedCounter:  confirmedCounter,
			rejectedCounter:   rejectedCounter,
			durationHistogram: durationHistogram,
		}
	})
	return sharedMetrics
}

func (tm *Metrics) TrackTransaction(start time.Time) {
	tm.durationHistogram.Observe(time.Since(start).Seconds())
}
