// Package config loads portal settings. Values come, in increasing order of
// precedence, from built-in defaults, an optional YAML file, a .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DevSigningKey is used when JWT_SIGNING_KEY is unset. Fine for local runs only.
const DevSigningKey = "dev-secret-key-change-in-production"

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `yaml:"url"          envconfig:"REDIS_URL"`
	PoolSize     int           `yaml:"poolSize"     envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int           `yaml:"minIdleConns" envconfig:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  envconfig:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  envconfig:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"REDIS_WRITE_TIMEOUT"`
}

// Config is the full portal configuration.
type Config struct {
	Addr           string        `yaml:"addr"           envconfig:"ROMPORTAL_ADDR"`
	LogLevel       string        `yaml:"logLevel"       envconfig:"LOG_LEVEL"`
	RequestTimeout time.Duration `yaml:"requestTimeout" envconfig:"REQUEST_TIMEOUT"`

	StoreDriver string `yaml:"storeDriver" envconfig:"STORE_DRIVER"`
	DatabaseURL string `yaml:"databaseURL" envconfig:"DATABASE_URL"`
	SQLitePath  string `yaml:"sqlitePath"  envconfig:"SQLITE_PATH"`

	Redis          RedisConfig   `yaml:"redis"`
	VerifyCacheTTL time.Duration `yaml:"verifyCacheTTL" envconfig:"VERIFY_CACHE_TTL"`

	KafkaBrokers       []string      `yaml:"kafkaBrokers"       envconfig:"KAFKA_BROKERS"`
	AuditTopic         string        `yaml:"auditTopic"         envconfig:"AUDIT_TOPIC"`
	AuditRelayInterval time.Duration `yaml:"auditRelayInterval" envconfig:"AUDIT_RELAY_INTERVAL"`

	JWTSigningKey string        `yaml:"jwtSigningKey" envconfig:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `yaml:"jwtIssuer"     envconfig:"JWT_ISSUER"`
	TokenTTL      time.Duration `yaml:"tokenTTL"      envconfig:"TOKEN_TTL"`

	SerialBucket      string   `yaml:"serialBucket"      envconfig:"SERIAL_BUCKET"`
	ModernSchoolYears []string `yaml:"modernSchoolYears" envconfig:"MODERN_SCHOOL_YEARS"`
	PublicBaseURL     string   `yaml:"publicBaseURL"     envconfig:"PUBLIC_BASE_URL"`
	DefaultIssuer     string   `yaml:"defaultIssuer"     envconfig:"DEFAULT_ISSUER"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		LogLevel:       "info",
		RequestTimeout: 15 * time.Second,
		StoreDriver:    DriverMemory,
		SQLitePath:     "romportal.db",
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		VerifyCacheTTL:     5 * time.Minute,
		AuditTopic:         "romportal.audit",
		AuditRelayInterval: 2 * time.Second,
		JWTSigningKey:      DevSigningKey,
		JWTIssuer:          "romportal",
		TokenTTL:           12 * time.Hour,
		SerialBucket:       "type",
		ModernSchoolYears:  []string{"2025", "2026"},
		PublicBaseURL:      "http://localhost:8080",
		DefaultIssuer:      "RMMO Alumni Advisory Council",
	}
}

// Load builds the configuration. configFile may be empty; envFile names a
// dotenv file and a missing one is not an error.
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, postgres or sqlite)", c.StoreDriver)
	}
	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for the sqlite store driver")
	}
	if c.JWTSigningKey == "" {
		return errors.New("JWT_SIGNING_KEY must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.AuditTopic == "" {
		return errors.New("AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// UsesDevSigningKey reports whether tokens are signed with the built-in key.
func (c *Config) UsesDevSigningKey() bool {
	return c.JWTSigningKey == DevSigningKey
}
