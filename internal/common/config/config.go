// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// CacheConfig selects the location-cache backend. The memory backend is
// process-local and rebuilt empty on restart; redis shares entries across
// replicas. Either way the cache is a performance optimization, not a
// source of truth.
type CacheConfig struct {
	Backend  string      `mapstructure:"backend"` // "memory" or "redis"
	Capacity int         `mapstructure:"capacity"`
	TTLHours int         `mapstructure:"ttl_hours"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GeocodingConfig holds one section per cascade strategy that makes a
// network call. Strategy order is fixed by the resolver, not by config.
type GeocodingConfig struct {
	Enterprise ProviderConfig `mapstructure:"enterprise"`
	Regional   ProviderConfig `mapstructure:"regional"`
	General    ProviderConfig `mapstructure:"general"`
	Gazetteer  ProviderConfig `mapstructure:"gazetteer"` // open free-text search
}

type ProviderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// ResolverConfig carries the empirically chosen resolution constants. They
// are configurable rather than hard-coded so they can be recalibrated
// against a labeled location set without a rebuild.
type ResolverConfig struct {
	FuzzyOverlap float64 `mapstructure:"fuzzy_overlap"` // gazetteer token-overlap threshold
	MinSpanDeg   float64 `mapstructure:"min_span_deg"`  // reject building-scale boxes below this
	MaxSpanDeg   float64 `mapstructure:"max_span_deg"`  // reject hemisphere-scale boxes above this
}

// CatalogConfig points at the versioned catalog artifact (collection
// capability classes, keyword table, curated gazetteer entries).
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Addr returns the listen address for the HTTP surface.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
