package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Workers   WorkerConfig
	Overpass  OverpassConfig
	Elevation ElevationConfig
	Limits    LimitsConfig
	Session   SessionConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	// Count bounds per-point analysis, pair intersection and layer
	// conversion. Zero or negative means "use all CPUs".
	Count int
}

type OverpassConfig struct {
	URL     string
	Timeout time.Duration
}

type ElevationConfig struct {
	URL     string
	Timeout time.Duration
}

type LimitsConfig struct {
	MaxPoints        int
	HoseMinMeters    float64
	HoseMaxMeters    float64
	MaxPairDistanceM float64
}

type SessionConfig struct {
	TTL      time.Duration
	MaxBytes int64
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Workers: WorkerConfig{
			Count: getEnvInt("WORKER_COUNT", 0),
		},
		Overpass: OverpassConfig{
			URL:     getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			Timeout: getEnvDuration("OVERPASS_TIMEOUT", 30*time.Second),
		},
		Elevation: ElevationConfig{
			URL:     getEnv("ELEVATION_URL", "https://api.open-elevation.com/api/v1/lookup"),
			Timeout: getEnvDuration("ELEVATION_TIMEOUT", 15*time.Second),
		},
		Limits: LimitsConfig{
			MaxPoints:        getEnvInt("MAX_POINTS", 10),
			HoseMinMeters:    getEnvFloat("HOSE_MIN_METERS", 120),
			HoseMaxMeters:    getEnvFloat("HOSE_MAX_METERS", 5000),
			MaxPairDistanceM: getEnvFloat("MAX_PAIR_DISTANCE_METERS", 25000),
		},
		Session: SessionConfig{
			TTL:      getEnvDuration("SESSION_TTL", time.Hour),
			MaxBytes: int64(getEnvInt("SESSION_CACHE_MAX_BYTES", 256<<20)),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/hydrant-reach.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Limits.MaxPoints < 1 {
		return fmt.Errorf("max points must be at least 1")
	}
	if c.Limits.HoseMinMeters <= 0 || c.Limits.HoseMaxMeters <= c.Limits.HoseMinMeters {
		return fmt.Errorf("invalid hose length bounds: [%v, %v]", c.Limits.HoseMinMeters, c.Limits.HoseMaxMeters)
	}
	if c.Elevation.Timeout < time.Second {
		return fmt.Errorf("elevation timeout must be at least 1 second")
	}

	return nil
}

// WorkerCount resolves the configured parallelism, falling back to the
// host CPU count and never dropping below 1.
func (c *Config) WorkerCount() int {
	if c.Workers.Count > 0 {
		return c.Workers.Count
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
