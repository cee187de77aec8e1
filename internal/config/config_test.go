package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/cratedigger/internal/constants"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, constants.DefaultDBPath, cfg.DBPath)
	assert.Equal(t, constants.DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, CatalogAuthDiscogs, cfg.CatalogAuth)
	assert.Equal(t, constants.DefaultPollInterval, cfg.PollInterval)
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("CATALOG_AUTH", "bearer")
	t.Setenv("POLL_INTERVAL", "1700ms")
	t.Setenv("AUTO_REQUEUE_COOLDOWN", "1h")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, CatalogAuthBearer, cfg.CatalogAuth)
	assert.Equal(t, 1700*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, time.Hour, cfg.RequeueCooldown)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("CATALOG_TOKEN", "tok")
	t.Setenv("VIDEO_API_KEY", "key")

	cfg := Load()

	assert.Equal(t, constants.DefaultPollInterval, cfg.PollInterval)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL must be a duration")
}

func validConfig() Config {
	return Config{
		Port:            "8080",
		DBPath:          "test.db",
		LogLevel:        "info",
		LogFormat:       "text",
		DefaultOwner:    "local",
		CatalogURL:      "https://api.discogs.com",
		CatalogToken:    "token",
		CatalogAuth:     CatalogAuthDiscogs,
		VideoURL:        "https://www.googleapis.com/youtube/v3",
		VideoAPIKey:     "key",
		PollInterval:    time.Second,
		RequeueSchedule: "@every 10m",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Port = "abc" }, wantErr: "PORT must be a valid number"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "PORT must be between"},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: "DB_PATH cannot be empty"},
		{name: "bad catalog url", mutate: func(c *Config) { c.CatalogURL = "not a url" }, wantErr: "CATALOG_URL is not a valid URL"},
		{name: "unknown auth", mutate: func(c *Config) { c.CatalogAuth = "oauth1" }, wantErr: "CATALOG_AUTH must be one of"},
		{name: "missing token", mutate: func(c *Config) { c.CatalogToken = "" }, wantErr: "CATALOG_TOKEN cannot be empty"},
		{name: "missing video key", mutate: func(c *Config) { c.VideoAPIKey = "" }, wantErr: "VIDEO_API_KEY cannot be empty"},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "LOG_LEVEL must be one of"},
		{name: "invalid log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT must be one of"},
		{name: "poll too fast", mutate: func(c *Config) { c.PollInterval = time.Millisecond }, wantErr: "POLL_INTERVAL must be at least"},
		{name: "bad schedule", mutate: func(c *Config) { c.RequeueSchedule = "every tuesday" }, wantErr: "AUTO_REQUEUE_SCHEDULE is invalid"},
		{name: "schedule disabled", mutate: func(c *Config) { c.RequeueSchedule = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	cfg.DBPath = ""
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "PORT cannot be empty")
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
	assert.Contains(t, err.Error(), "LOG_LEVEL must be one of")
}
