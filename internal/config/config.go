package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Book bundle on disk
	BundlePath string

	// Disk cache for parsed modules; empty disables caching
	CacheDir string

	// Auth; empty leaves the API open (local development)
	APIKey string

	// Corpus worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentParse int

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		BundlePath: os.Getenv("BUNDLE_PATH"),
		CacheDir:   envOr("CACHE_DIR", "cache"),
		APIKey:     os.Getenv("CNXGEST_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 2),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 16),
		MaxConcurrentParse: envInt("MAX_CONCURRENT_PARSE", 8),

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1500),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 200),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.MaxConcurrentParse <= 0 {
		cfg.MaxConcurrentParse = 8
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1500
	}
	if cfg.DefaultChunkOverlap <= 0 {
		cfg.DefaultChunkOverlap = 200
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BundlePath == "" {
		return fmt.Errorf("BUNDLE_PATH is required")
	}
	info, err := os.Stat(c.BundlePath)
	if err != nil {
		return fmt.Errorf("BUNDLE_PATH: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("BUNDLE_PATH is not a directory: %s", c.BundlePath)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
