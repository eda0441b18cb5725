// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/burden/internal/adapters/source"
	"github.com/okian/burden/internal/domain/types"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is a file path or http(s) URL of the burden CSV.
	DataPath string `koanf:"data_path"`
	// CountryCodesURL locates the ISO 3166 code table.
	CountryCodesURL string `koanf:"country_codes_url"`
	// TopologyURL locates the world TopoJSON.
	TopologyURL string `koanf:"topology_url"`
	// TopologyObject names the geometry collection inside the topology.
	TopologyObject string `koanf:"topology_object"`
	// FetchTimeoutMS bounds each remote fetch at startup.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// DropPolicy is blanket or per_metric.
	DropPolicy string `koanf:"drop_policy"`
	// TopN is the number of bars in the ranking.
	TopN int `koanf:"top_n"`

	// JoinCacheSize bounds the number of cached (metric, year) joins.
	JoinCacheSize int `koanf:"join_cache_size"`
	// WarmupWorkers precompute joins at startup. Zero disables warmup.
	WarmupWorkers int `koanf:"warmup_workers"`

	// SessionBackend is memory or redis.
	SessionBackend string `koanf:"session_backend"`
	// SessionCacheSize bounds the in-memory session store.
	SessionCacheSize int `koanf:"session_cache_size"`
	// RedisURL is used when SessionBackend is redis.
	RedisURL string `koanf:"redis_url"`
	// SessionTTLMinutes expires idle sessions in redis.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DataPath:          source.DefaultBurdenPath,
		CountryCodesURL:   source.DefaultCountryCodesURL,
		TopologyURL:       source.DefaultTopologyURL,
		TopologyObject:    source.DefaultTopologyObject,
		FetchTimeoutMS:    30_000,
		DropPolicy:        string(types.DropBlanket),
		TopN:              10,
		JoinCacheSize:     256,
		WarmupWorkers:     runtime.NumCPU(),
		SessionBackend:    SessionBackendMemory,
		SessionCacheSize:  10_000,
		RedisURL:          "redis://localhost:6379/0",
		SessionTTLMinutes: 60,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// SessionTTL returns SessionTTLMinutes as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Policy returns the parsed drop policy.
func (c *Config) Policy() types.DropPolicy {
	p, err := types.ParseDropPolicy(c.DropPolicy)
	if err != nil {
		return types.DropBlanket
	}
	return p
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.CountryCodesURL) == "":
		return fmt.Errorf("%w: country_codes_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.TopologyURL) == "":
		return fmt.Errorf("%w: topology_url must not be empty", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.JoinCacheSize <= 0:
		return fmt.Errorf("%w: join_cache_size must be positive", ErrInvalidConfig)
	case c.WarmupWorkers < 0:
		return fmt.Errorf("%w: warmup_workers must not be negative", ErrInvalidConfig)
	case c.SessionCacheSize <= 0:
		return fmt.Errorf("%w: session_cache_size must be positive", ErrInvalidConfig)
	}
	if _, err := types.ParseDropPolicy(c.DropPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("%w: redis_url must be set for the redis backend", ErrInvalidConfig)
		}
		if c.SessionTTLMinutes <= 0 {
			return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: session_backend %q", ErrInvalidConfig, c.SessionBackend)
	}
	return nil
}
