package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesTemplateAndUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err, "template should be written on first run")

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StrategyTTL)
	assert.Equal(t, "UTC", cfg.Analytics.Timezone)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 40, cfg.Server.RateBurst)
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	body := `
[database]
driver = "sqlite"
path = "/tmp/custom.db"

[cache]
strategy_ttl = "30s"

[analytics]
timezone = "America/New_York"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0600))
	t.Setenv("TJ_JWT_SECRET", "s3cret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Second, cfg.Cache.StrategyTTL)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.NoError(t, cfg.ValidateServer())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			Cache:     CacheConfig{StrategyTTL: time.Minute, StrategyCapacity: 10},
			Analytics: AnalyticsConfig{Timezone: "UTC"},
		}
	}

	assert.NoError(t, valid().Validate())

	c := valid()
	c.Database.Driver = "postgres"
	assert.Error(t, c.Validate())

	c = valid()
	c.Database.Driver = DriverMongo
	assert.Error(t, c.Validate(), "mongo needs a uri")

	c = valid()
	c.Cache.StrategyTTL = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Analytics.Timezone = "Mars/Olympus"
	assert.Error(t, c.Validate())

	assert.Error(t, valid().ValidateServer(), "serve needs a jwt secret")

	c = valid()
	c.Server = ServerConfig{Address: ":8080", JWTSecret: "k", RateLimit: 5}
	assert.Error(t, c.ValidateServer(), "a rate limit needs a burst")
	c.Server.RateBurst = 10
	assert.NoError(t, c.ValidateServer())
}
