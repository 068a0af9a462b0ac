// Package pipeline sequences fetch, size check, compression, and delivery for
// one video link, and maps every failure to a user-facing outcome. Each run
// owns exactly one temporary asset and deletes it before returning, success
// or failure.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/driftline/reelpost/config"
	"github.com/driftline/reelpost/telemetry"
)

// Asset is the local media file owned by one pipeline run.
type Asset struct {
	Path  string
	Size  int64
	Title string
}

// Fetcher resolves a URL to a local media file (a single item, never a playlist).
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Asset, error)
}

// Compressor shrinks a file to fit within budget bytes, or reports that it
// cannot. The input file is left in place either way.
type Compressor interface {
	Compress(ctx context.Context, inputPath string, budget int64, maxAttempts int) (string, error)
}

// Notifier delivers the outcome back to the originating message.
type Notifier interface {
	ReplyText(ctx context.Context, text string) error
	ReplyFile(ctx context.Context, filename string, r io.Reader) error
}

// Phase keys the best-effort status markers shown while a run progresses.
type Phase int

const (
	PhaseDownloading Phase = iota
	PhaseCompressing
	PhaseSucceeded
	PhaseFailed
)

// StatusMarker attaches progress indicators. Implementations must swallow
// their own errors; a failed marker never changes a run's outcome.
type StatusMarker interface {
	Mark(ctx context.Context, p Phase)
}

// Request identifies one video link to process.
type Request struct {
	URL      string
	Platform string
}

// Pipeline is the orchestrator. Collaborators and limits are fixed at
// construction; runs for different requests may proceed concurrently since a
// run touches only its own asset.
type Pipeline struct {
	fetcher    Fetcher
	compressor Compressor

	maxFileSize       int64
	enableCompression bool
	maxAttempts       int
}

// New builds a Pipeline from configuration and collaborators.
func New(cfg *config.Config, f Fetcher, c Compressor) *Pipeline {
	return &Pipeline{
		fetcher:           f,
		compressor:        c,
		maxFileSize:       cfg.MaxFileSize,
		enableCompression: cfg.EnableCompression,
		maxAttempts:       cfg.MaxAttempts,
	}
}

// Run processes one request to a terminal outcome. It emits exactly one
// notification via n and final status via m, and guarantees the asset is
// removed from disk before returning.
func (p *Pipeline) Run(ctx context.Context, req Request, n Notifier, m StatusMarker) Outcome {
	runID := uuid.New().String()
	ctx = telemetry.WithCorrelation(ctx, runID)
	logger := slog.Default().With(slog.String("run_id", runID), slog.String("url", req.URL), slog.String("component", "pipeline"))

	ctx, span := telemetry.StartSpan(ctx, "pipeline", "pipeline.run",
		attribute.String("platform", req.Platform))
	defer span.End()

	start := time.Now()
	telemetry.ActivePipelinesAdd(1)
	defer telemetry.ActivePipelinesAdd(-1)

	outcome := p.execute(ctx, logger, req, n, m)

	if msg := outcome.UserMessage(p.maxFileSize); msg != "" {
		if err := n.ReplyText(ctx, msg); err != nil {
			logger.Warn("failed to send outcome reply", slog.Any("err", err))
		}
	}
	if outcome.Kind == Delivered {
		m.Mark(ctx, PhaseSucceeded)
		telemetry.SetSpanSuccess(span)
	} else {
		m.Mark(ctx, PhaseFailed)
		telemetry.RecordError(span, fmt.Errorf("pipeline ended %s", outcome.Kind))
	}
	span.SetAttributes(attribute.String("outcome", outcome.Kind.String()))
	telemetry.PipelineDuration.Observe(time.Since(start).Seconds())
	logger.Info("pipeline finished",
		slog.String("outcome", outcome.Kind.String()),
		slog.Duration("total_duration", time.Since(start)))
	return outcome
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, req Request, n Notifier, m StatusMarker) Outcome {
	m.Mark(ctx, PhaseDownloading)
	telemetry.DownloadsStarted.Inc()
	dlStart := time.Now()
	asset, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		// Nothing was written; no cleanup needed.
		logger.Warn("download failed", slog.Any("err", err), slog.Duration("download_duration", time.Since(dlStart)))
		telemetry.DownloadsFailed.Inc()
		return Outcome{Kind: DownloadFailed, Platform: req.Platform}
	}
	telemetry.DownloadsSucceeded.Inc()
	telemetry.DownloadDuration.Observe(time.Since(dlStart).Seconds())
	logger.Info("download complete",
		slog.String("path", asset.Path),
		slog.Int64("size", asset.Size),
		slog.Duration("download_duration", time.Since(dlStart)))

	// The run owns the asset from here on; it must not outlive the run,
	// whichever exit is taken. path is re-pointed if compression adopts a
	// new file, so the deferred delete always targets the current asset.
	path := asset.Path
	defer func() { cleanupFile(logger, path) }()

	size := asset.Size
	if size > p.maxFileSize {
		if !p.enableCompression {
			logger.Warn("video exceeds size limit, compression disabled",
				slog.Int64("size", size), slog.Int64("limit", p.maxFileSize))
			telemetry.RejectionsTooLarge.Inc()
			return Outcome{Kind: TooLarge, OriginalSize: size, Platform: req.Platform}
		}
		m.Mark(ctx, PhaseCompressing)
		cmpStart := time.Now()
		compressed, err := p.compressor.Compress(ctx, path, p.maxFileSize, p.maxAttempts)
		if err != nil {
			logger.Warn("compression failed", slog.Any("err", err), slog.Duration("compress_duration", time.Since(cmpStart)))
			telemetry.CompressionsFailed.Inc()
			return Outcome{Kind: CompressionFailed, OriginalSize: size, Platform: req.Platform}
		}
		telemetry.CompressionsSucceeded.Inc()
		telemetry.CompressDuration.Observe(time.Since(cmpStart).Seconds())
		// The pre-compression original is dead weight once a candidate fits.
		cleanupFile(logger, path)
		path = compressed
		st, err := os.Stat(path)
		if err != nil {
			logger.Error("compressed output unreadable", slog.Any("err", err))
			return Outcome{Kind: CompressionFailed, OriginalSize: size, Platform: req.Platform}
		}
		size = st.Size()
		logger.Info("compression complete", slog.Int64("size", size), slog.Duration("compress_duration", time.Since(cmpStart)))
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open asset for delivery", slog.Any("err", err))
		telemetry.DeliveriesFailed.Inc()
		return Outcome{Kind: UploadFailed, Platform: req.Platform}
	}
	defer f.Close()
	if err := n.ReplyFile(ctx, AttachmentName(asset.Title, path), f); err != nil {
		logger.Error("delivery failed", slog.Any("err", err))
		telemetry.DeliveriesFailed.Inc()
		return Outcome{Kind: UploadFailed, Platform: req.Platform}
	}
	telemetry.DeliveriesSucceeded.Inc()
	return Outcome{Kind: Delivered, Path: path, Size: size, Platform: req.Platform}
}

// cleanupFile removes path if it still exists. Deleting an already-removed
// asset is a no-op, so cleanup is safe to run more than once.
func cleanupFile(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to clean up asset", slog.String("path", path), slog.Any("err", err))
		}
		return
	}
	logger.Debug("cleaned up asset", slog.String("path", path))
}
