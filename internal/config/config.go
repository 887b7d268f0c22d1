// Package config loads the verifier's configuration from a YAML file with
// environment variable overrides applied via `env` struct tags. A missing
// file yields the documented defaults, so the service starts with no config
// at all.
package config

import (
	"os"
	"time"
)

// Default configuration values.
const (
	defaultServiceName    = "report-verifier"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8090
	defaultConcurrency    = 8
	defaultQueueSize      = 256

	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "report_verifier"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5

	defaultRedisURL      = "localhost:6379"
	defaultCacheTTLHours = 24

	defaultMLServiceURL   = "http://fake-detector:8076"
	defaultRiskServiceURL = "http://risk-model:8077"

	defaultLLMModel       = "claude-sonnet-4-5-20250929"
	defaultLLMMaxTokens   = 1024
	defaultLLMRatePerSec  = 1.0
	defaultLLMBurst       = 3
	defaultLLMMaxRetries  = 2
	defaultLLMRetryDelay  = time.Second
	defaultLogLevel       = "info"
	defaultUploadMinScore = 20
)

// Config holds all configuration for the report verifier service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	ML       MLConfig       `yaml:"ml"`
	Risk     RiskConfig     `yaml:"risk"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Port        int    `env:"VERIFIER_PORT"        yaml:"port"`
	Debug       bool   `env:"APP_DEBUG"            yaml:"debug"`
	Concurrency int    `env:"VERIFIER_CONCURRENCY" yaml:"concurrency"`
	QueueSize   int    `yaml:"queue_size"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds the verdict cache configuration. Leaving URL empty
// disables caching.
type RedisConfig struct {
	URL      string        `env:"REDIS_URL"      yaml:"url"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database int           `yaml:"database"`
	Enabled  bool          `yaml:"enabled"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// MLConfig holds the fake-report model oracle configuration.
type MLConfig struct {
	Enabled    bool   `env:"ML_ENABLED"     yaml:"enabled"`
	ServiceURL string `env:"ML_SERVICE_URL" yaml:"service_url"`
}

// RiskConfig holds the escalation risk oracle configuration.
type RiskConfig struct {
	Enabled    bool   `env:"RISK_ENABLED"     yaml:"enabled"`
	ServiceURL string `env:"RISK_SERVICE_URL" yaml:"service_url"`
}

// LLMConfig holds language-model tier configuration. An empty API key
// disables the tier; the cascade then degrades to heuristics.
type LLMConfig struct {
	APIKey            string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model             string        `env:"LLM_MODEL"         yaml:"model"`
	MaxTokens         int64         `yaml:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load loads configuration from the specified path. An empty path skips the
// file and uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	return load(path)
}

// LoadDefault loads config.yml when present, otherwise defaults only.
func LoadDefault() (*Config, error) {
	path := "config.yml"
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	return load(path)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setOracleDefaults(cfg)
	setLLMDefaults(&cfg.LLM)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.QueueSize == 0 {
		s.QueueSize = defaultQueueSize
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.URL == "" {
		r.URL = defaultRedisURL
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTLHours * time.Hour
	}
}

func setOracleDefaults(cfg *Config) {
	if cfg.ML.ServiceURL == "" {
		cfg.ML.ServiceURL = defaultMLServiceURL
	}
	if cfg.Risk.ServiceURL == "" {
		cfg.Risk.ServiceURL = defaultRiskServiceURL
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = defaultLLMMaxTokens
	}
	if l.RequestsPerSecond == 0 {
		l.RequestsPerSecond = defaultLLMRatePerSec
	}
	if l.Burst == 0 {
		l.Burst = defaultLLMBurst
	}
	if l.MaxRetries == 0 {
		l.MaxRetries = defaultLLMMaxRetries
	}
	if l.RetryDelay == 0 {
		l.RetryDelay = defaultLLMRetryDelay
	}
}
