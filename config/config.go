// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (the Discord bot token), use ValidateBotReady.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Discord
	DiscordBotToken string

	// Delivery
	MaxFileSize int64 // bytes; upload ceiling imposed by the platform

	// Compression
	EnableCompression bool
	MaxAttempts       int
	SafetyMargin      float64 // fraction of the byte budget usable for video bitrate
	AudioBitrate      int     // bps

	// Storage
	TempDir string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail if the Discord
// token is missing; use ValidateBotReady() when you require the chat listener.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DiscordBotToken = os.Getenv("DISCORD_BOT_TOKEN")

	// 8 MiB: the attachment ceiling for non-boosted servers.
	cfg.MaxFileSize = 8 * 1024 * 1024
	if s := os.Getenv("MAX_FILE_SIZE_BYTES"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_FILE_SIZE_BYTES %q", s)
		}
		cfg.MaxFileSize = n
	}

	cfg.EnableCompression = true
	if s := os.Getenv("ENABLE_COMPRESSION"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_COMPRESSION %q", s)
		}
		cfg.EnableCompression = b
	}

	cfg.MaxAttempts = 3
	if s := os.Getenv("MAX_COMPRESSION_ATTEMPTS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_COMPRESSION_ATTEMPTS %q", s)
		}
		cfg.MaxAttempts = n
	}

	cfg.SafetyMargin = 0.85
	if s := os.Getenv("SAFETY_MARGIN"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 || f >= 1 {
			return nil, fmt.Errorf("invalid SAFETY_MARGIN %q (want fraction in (0,1))", s)
		}
		cfg.SafetyMargin = f
	}

	cfg.AudioBitrate = 96_000
	if s := os.Getenv("AUDIO_BITRATE_BPS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid AUDIO_BITRATE_BPS %q", s)
		}
		cfg.AudioBitrate = n
	}

	cfg.TempDir = os.Getenv("TEMP_DIR")
	if cfg.TempDir == "" {
		cfg.TempDir = "temp"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// ValidateBotReady checks required fields when the Discord listener is enabled.
func (c *Config) ValidateBotReady() error {
	if c.DiscordBotToken == "" {
		return fmt.Errorf("missing discord env: require DISCORD_BOT_TOKEN")
	}
	return nil
}
