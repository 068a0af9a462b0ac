// Command reelpost watches Discord messages for short-form video links
// (Instagram, TikTok, YouTube Shorts), downloads the video, compresses it to
// fit the upload ceiling if needed, and re-posts it inline as a reply.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects the Discord gateway listener.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/driftline/reelpost/compress"
	"github.com/driftline/reelpost/config"
	"github.com/driftline/reelpost/discord"
	"github.com/driftline/reelpost/download"
	"github.com/driftline/reelpost/pipeline"
	"github.com/driftline/reelpost/server"
	"github.com/driftline/reelpost/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateBotReady(); err != nil {
		slog.Error("discord not configured", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("reelpost", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		slog.Error("failed to create temp dir", slog.String("dir", cfg.TempDir), slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire the pipeline: yt-dlp fetch, ffmpeg compression ladder.
	fetcher := &download.YTDLP{TempDir: cfg.TempDir}
	engine := compress.NewEngine(cfg.SafetyMargin, cfg.AudioBitrate)
	pipe := pipeline.New(cfg, fetcher, engine)

	bot, err := discord.New(cfg.DiscordBotToken, pipe)
	if err != nil {
		slog.Error("failed to create discord bot", slog.Any("err", err))
		os.Exit(1)
	}

	// HTTP server (health/status/metrics)
	go func() {
		if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	slog.Info("starting discord listener",
		slog.Int64("max_file_size", cfg.MaxFileSize),
		slog.Bool("compression", cfg.EnableCompression),
		slog.Int("max_attempts", cfg.MaxAttempts))
	if err := bot.Start(ctx); err != nil {
		slog.Error("discord listener failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shutting down")
}
