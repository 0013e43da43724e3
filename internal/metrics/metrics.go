// Package metrics holds the Prometheus collectors of the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gophsite"

// Refresh results.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultDiscarded = "discarded"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "refresh_total",
			Help:      "Collection refreshes by result",
		},
		[]string{"collection", "result"},
	)

	refreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "refresh_duration_seconds",
			Help:      "Time taken to fetch a collection",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	collectionRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "records",
			Help:      "Records currently held by a collection controller",
		},
		[]string{"collection"},
	)

	feedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changefeed",
			Name:      "events_total",
			Help:      "Change events received per collection",
		},
		[]string{"collection"},
	)

	activityDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "dropped_total",
			Help:      "Activity entries dropped because the queue was full or the write failed",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "total",
			Help:      "Upload attempts by result",
		},
		[]string{"result"},
	)

	uploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Bytes successfully uploaded",
		},
	)
)

// ObserveRefresh records one finished fetch.
func ObserveRefresh(collection, result string, d time.Duration) {
	refreshTotal.WithLabelValues(collection, result).Inc()
	refreshDuration.WithLabelValues(collection).Observe(d.Seconds())
}

func SetRecords(collection string, n int) {
	collectionRecords.WithLabelValues(collection).Set(float64(n))
}

func IncFeedEvent(collection string) {
	feedEvents.WithLabelValues(collection).Inc()
}

func IncActivityDropped() {
	activityDropped.Inc()
}

// ObserveUpload records an upload attempt; size counts only on success.
func ObserveUpload(result string, size int) {
	uploadsTotal.WithLabelValues(result).Inc()
	if result == ResultOK {
		uploadBytes.Add(float64(size))
	}
}
