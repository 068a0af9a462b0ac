// Package telemetry provides Prometheus metrics, OpenTelemetry tracing setup,
// and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	DownloadsStarted      prometheus.Counter
	DownloadsFailed       prometheus.Counter
	DownloadsSucceeded    prometheus.Counter
	CompressionsSucceeded prometheus.Counter
	CompressionsFailed    prometheus.Counter
	DeliveriesSucceeded   prometheus.Counter
	DeliveriesFailed      prometheus.Counter
	RejectionsTooLarge    prometheus.Counter

	// Histograms (seconds)
	DownloadDuration prometheus.Observer
	CompressDuration prometheus.Observer
	PipelineDuration prometheus.Observer

	// Gauges
	ActivePipelinesGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		DownloadsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_downloads_started_total", Help: "Number of video downloads started"})
		DownloadsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_downloads_failed_total", Help: "Number of video downloads failed"})
		DownloadsSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_downloads_succeeded_total", Help: "Number of video downloads succeeded"})
		CompressionsSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_compressions_succeeded_total", Help: "Number of videos compressed under the size budget"})
		CompressionsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_compressions_failed_total", Help: "Number of videos the compression ladder could not fit"})
		DeliveriesSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_deliveries_succeeded_total", Help: "Number of videos re-posted as attachments"})
		DeliveriesFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_deliveries_failed_total", Help: "Number of attachment deliveries rejected"})
		RejectionsTooLarge = promauto.NewCounter(prometheus.CounterOpts{Name: "reelpost_rejections_too_large_total", Help: "Number of videos rejected oversize with compression disabled"})
		DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "reelpost_download_duration_seconds", Help: "Download duration seconds", Buckets: prometheus.DefBuckets})
		CompressDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "reelpost_compress_duration_seconds", Help: "Compression duration seconds", Buckets: prometheus.DefBuckets})
		PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "reelpost_pipeline_duration_seconds", Help: "Total pipeline run duration seconds", Buckets: prometheus.DefBuckets})
		ActivePipelinesGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "reelpost_active_pipelines", Help: "Number of pipeline runs currently in flight"})
	})
}

// ActivePipelinesAdd adjusts the in-flight pipeline gauge by delta.
func ActivePipelinesAdd(delta float64) {
	if ActivePipelinesGauge != nil {
		ActivePipelinesGauge.Add(delta)
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
