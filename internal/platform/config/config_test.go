package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"2025", "2026"}, cfg.ModernSchoolYears)
	assert.Equal(t, "RMMO Alumni Advisory Council", cfg.DefaultIssuer)
	assert.True(t, cfg.UsesDevSigningKey())
}

func TestLoadPrecedence(t *testing.T) {
	yamlFile := writeFile(t, "romportal.yaml", `
addr: ":9000"
storeDriver: sqlite
sqlitePath: /var/lib/romportal.db
tokenTTL: 2h
serialBucket: year_type
redis:
  poolSize: 20
`)
	t.Setenv("ROMPORTAL_ADDR", ":9100")
	t.Setenv("MODERN_SCHOOL_YEARS", "2026,2027")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load(yamlFile, "")
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr, "environment wins over yaml")
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/var/lib/romportal.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "year_type", cfg.SerialBucket)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout, "yaml leaves other defaults in place")
	assert.Equal(t, []string{"2026", "2027"}, cfg.ModernSchoolYears)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "JWT_SIGNING_KEY=from-dotenv\nSTORE_DRIVER=Postgres\nDATABASE_URL=postgres://localhost/romportal\n")
	t.Cleanup(func() {
		os.Unsetenv("JWT_SIGNING_KEY")
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("DATABASE_URL")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWTSigningKey)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.False(t, cfg.UsesDevSigningKey())
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }},
		{"sqlite without path", func(c *Config) { c.StoreDriver = DriverSQLite; c.SQLitePath = "" }},
		{"empty signing key", func(c *Config) { c.JWTSigningKey = "" }},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"brokers without topic", func(c *Config) { c.KafkaBrokers = []string{"k:9092"}; c.AuditTopic = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
