package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Candidate sources selectable with matching.source.
const (
	SourceREST     = "rest"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Maps      MapsConfig      `mapstructure:"maps"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	RateLimit      int    `mapstructure:"rate_limit"` // requests per minute per IP
	CORSOrigins    string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Durable string `mapstructure:"durable"`
}

type ValkeyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type MapsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
	QPS     int    `mapstructure:"qps"`
}

func (m MapsConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

func (u UpstreamConfig) TimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

type MatchingConfig struct {
	Source                string `mapstructure:"source"`
	RequireWorkerCategory bool   `mapstructure:"require_worker_category"`
	SnapshotTTL           int    `mapstructure:"snapshot_ttl"`
	GeocodeCacheTTL       int    `mapstructure:"geocode_cache_ttl"`
	GeocodeConcurrency    int    `mapstructure:"geocode_concurrency"`
}

type TemporalConfig struct {
	HostPort        string `mapstructure:"host_port"`
	Namespace       string `mapstructure:"namespace"`
	TaskQueue       string `mapstructure:"task_queue"`
	RefreshInterval int    `mapstructure:"refresh_interval"`
}

func (t TemporalConfig) RefreshIntervalDuration() time.Duration {
	return time.Duration(t.RefreshInterval) * time.Second
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.request_timeout", 25)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "geomatch")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "geomatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.durable", service)
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("valkey.prefix", "geomatch:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.base_url", "")
	v.SetDefault("maps.timeout", 10)
	v.SetDefault("maps.qps", 0)
	v.SetDefault("upstream.base_url", "https://karigar-server-new.onrender.com")
	v.SetDefault("upstream.timeout", 30)
	v.SetDefault("matching.source", SourceREST)
	v.SetDefault("matching.require_worker_category", false)
	v.SetDefault("matching.snapshot_ttl", 0)
	v.SetDefault("matching.geocode_cache_ttl", 86400)
	v.SetDefault("matching.geocode_concurrency", 1)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "geomatch-refresh")
	v.SetDefault("temporal.refresh_interval", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOMATCH_MAPS_API_KEY → maps.api_key
	v.SetEnvPrefix("GEOMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
// Sections of optional backends are only checked when that backend is in use.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	switch c.Matching.Source {
	case SourceREST:
		if c.Upstream.BaseURL == "" {
			errs = append(errs, "upstream.base_url is required when matching.source is rest")
		}
	case SourcePostgres:
		errs = append(errs, c.Database.problems()...)
	case SourceMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, "mongo.uri is required when matching.source is mongo")
		}
		if c.Mongo.Database == "" {
			errs = append(errs, "mongo.database is required when matching.source is mongo")
		}
	default:
		errs = append(errs, fmt.Sprintf("matching.source must be rest, postgres or mongo, got %q", c.Matching.Source))
	}

	if c.Matching.SnapshotTTL < 0 {
		errs = append(errs, "matching.snapshot_ttl must not be negative")
	}
	if c.Matching.GeocodeCacheTTL < 0 {
		errs = append(errs, "matching.geocode_cache_ttl must not be negative")
	}
	if c.Matching.GeocodeConcurrency < 1 {
		errs = append(errs, "matching.geocode_concurrency must be at least 1")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.Temporal.RefreshInterval <= 0 {
		errs = append(errs, "temporal.refresh_interval must be positive")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateMaps checks the maps provider settings. Binaries that geocode call it
// after Load.
func (c *Config) ValidateMaps() error {
	if c.Maps.APIKey == "" {
		return fmt.Errorf("config validation failed:\n  - maps.api_key is required")
	}
	return nil
}

// ValidateDatabase checks the postgres settings for binaries that always need a database.
func (c *Config) ValidateDatabase() error {
	if errs := c.Database.problems(); len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user is required")
	}
	if d.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	return errs
}
