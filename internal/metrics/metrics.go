package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DownloadOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_download_outcomes_total",
		Help: "Bulletin download sequences by terminal outcome",
	}, []string{"outcome"})

	DownloadsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spimex_downloads_in_flight",
		Help: "Download sequences currently holding the concurrency semaphore",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spimex_download_duration_seconds",
		Help:    "Duration of one download sequence (fetch to enqueue)",
		Buckets: prometheus.DefBuckets,
	})

	RecordsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_records_total",
		Help: "Trade records seen by the consumer, by result",
	}, []string{"result"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spimex_run_duration_seconds",
		Help:    "Wall-clock duration of ingestion runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"status"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spimex_cache_hits_total",
		Help: "API cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spimex_cache_misses_total",
		Help: "API cache misses",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_http_requests_total",
		Help: "API requests by route and status code",
	}, []string{"route", "code"})
)

func RecordOutcome(outcome string, elapsed time.Duration) {
	DownloadOutcomes.WithLabelValues(outcome).Inc()
	DownloadDuration.Observe(elapsed.Seconds())
}

func RecordRecords(inserted, skipped int) {
	RecordsPersisted.WithLabelValues("inserted").Add(float64(inserted))
	RecordsPersisted.WithLabelValues("skipped").Add(float64(skipped))
}

func RecordRun(err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	RunDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func RecordCache(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}
