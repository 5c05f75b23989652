package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Weather    WeatherConfig    `yaml:"weather"`
	Services   ServicesConfig   `yaml:"services"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                 int      `yaml:"port"`
	RateLimitPerSec      float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst       int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds      int      `yaml:"cache_ttl_seconds"`
	CORSOrigins          []string `yaml:"cors_origins"`
	WSInsecureSkipVerify bool     `yaml:"ws_insecure_skip_verify"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds the JWT signing configuration.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	TokenTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
	// HandshakeTimeoutSeconds bounds credential verification during the
	// websocket handshake. Verification past this deadline fails closed.
	HandshakeTimeoutSeconds int           `yaml:"handshake_timeout_seconds"`
	HandshakeTimeout        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// WeatherConfig holds the configuration for the background weather alert poller.
type WeatherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	URL             string        `yaml:"url"`
	Region          string        `yaml:"region"`
}

// ServicesConfig holds the endpoints of external collaborator services.
type ServicesConfig struct {
	DiagnosisURL string `yaml:"diagnosis_url"`
	MarketURL    string `yaml:"market_url"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 168 // one week
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.Auth.HandshakeTimeoutSeconds <= 0 {
		cfg.Auth.HandshakeTimeoutSeconds = 5
	}
	cfg.Auth.HandshakeTimeout = time.Duration(cfg.Auth.HandshakeTimeoutSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Weather.IntervalSeconds <= 0 {
		cfg.Weather.IntervalSeconds = 600
	}
	cfg.Weather.Interval = time.Duration(cfg.Weather.IntervalSeconds) * time.Second

	return &cfg, nil
}
