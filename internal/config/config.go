// Package config provides configuration loading from environment variables
// and from algolia-codegen configuration files.
package config

import (
	"os"
	"strconv"
	"time"
)

// Runtime defaults
const (
	DefaultHitsPerPageValue     = 20
	DefaultSampleCacheMaxItems  = 64
	DefaultGenerateWorkersValue = 4
	DefaultMaxValueSetSizeValue = 100
)

// Config holds process-wide runtime settings. Per-target settings live in
// the configuration file, see File.
type Config struct {
	ConfigFile          string        // ALGOLIA_CODEGEN_CONFIG, default "" (search working directory)
	HTTPConnectTimeout  time.Duration // HTTP_CONNECT_TIMEOUT_MS, default 10000ms (10s)
	HTTPRequestTimeout  time.Duration // HTTP_REQUEST_TIMEOUT_MS, default 30000ms (30s)
	HitsPerPage         int           // HITS_PER_PAGE, default 20
	SampleCacheMaxItems int           // SAMPLE_CACHE_MAX_ITEMS, default 64
	GenerateWorkers     int           // GENERATE_WORKERS, default 4
	MaxValueSetSize     int           // MAX_VALUE_SET_SIZE, default 100

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogFormat     string // LOG_FORMAT, default "auto" (text on a terminal, JSON otherwise)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ConfigFile:          getEnvString("ALGOLIA_CODEGEN_CONFIG", ""),
		HTTPConnectTimeout:  getEnvDurationMs("HTTP_CONNECT_TIMEOUT_MS", 10000),
		HTTPRequestTimeout:  getEnvDurationMs("HTTP_REQUEST_TIMEOUT_MS", 30000),
		HitsPerPage:         getEnvInt("HITS_PER_PAGE", DefaultHitsPerPageValue),
		SampleCacheMaxItems: getEnvInt("SAMPLE_CACHE_MAX_ITEMS", DefaultSampleCacheMaxItems),
		GenerateWorkers:     getEnvInt("GENERATE_WORKERS", DefaultGenerateWorkersValue),
		MaxValueSetSize:     getEnvInt("MAX_VALUE_SET_SIZE", DefaultMaxValueSetSizeValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogFormat:     getEnvString("LOG_FORMAT", "auto"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
