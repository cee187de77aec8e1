package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cesargomez89/cratedigger/internal/constants"
)

// Catalog credential styles
const (
	CatalogAuthDiscogs = "discogs"
	CatalogAuthBearer  = "bearer"
)

// Config holds all application configuration
type Config struct {
	Port             string
	DBPath           string
	LogLevel         string
	LogFormat        string
	DefaultOwner     string
	CatalogURL       string
	CatalogToken     string
	CatalogAuth      string
	UserAgent        string
	VideoURL         string
	VideoAPIKey      string
	StorefrontLinks  string
	PollInterval     time.Duration
	RequeueSchedule  string
	RequeueCooldown  time.Duration
	durationProblems []string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", constants.DefaultPort),
		DBPath:          getEnv("DB_PATH", constants.DefaultDBPath),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		DefaultOwner:    getEnv("DEFAULT_OWNER", constants.DefaultOwner),
		CatalogURL:      getEnv("CATALOG_URL", constants.DefaultCatalogURL),
		CatalogToken:    getEnv("CATALOG_TOKEN", ""),
		CatalogAuth:     getEnv("CATALOG_AUTH", CatalogAuthDiscogs),
		UserAgent:       getEnv("CATALOG_USER_AGENT", constants.DefaultUserAgent),
		VideoURL:        getEnv("VIDEO_URL", constants.DefaultVideoURL),
		VideoAPIKey:     getEnv("VIDEO_API_KEY", ""),
		StorefrontLinks: getEnv("STOREFRONT_LINKS", ""),
		RequeueSchedule: getEnv("AUTO_REQUEUE_SCHEDULE", constants.DefaultRequeueSchedule),
	}
	cfg.PollInterval = cfg.getDuration("POLL_INTERVAL", constants.DefaultPollInterval)
	cfg.RequeueCooldown = cfg.getDuration("AUTO_REQUEUE_COOLDOWN", constants.DefaultRequeueCooldown)
	return cfg
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	errors := append([]string(nil), c.durationProblems...)

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.DefaultOwner == "" {
		errors = append(errors, "DEFAULT_OWNER cannot be empty")
	}

	for key, raw := range map[string]string{"CATALOG_URL": c.CatalogURL, "VIDEO_URL": c.VideoURL} {
		if raw == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", key))
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", key, raw))
		}
	}

	if c.CatalogAuth != CatalogAuthDiscogs && c.CatalogAuth != CatalogAuthBearer {
		errors = append(errors, fmt.Sprintf("CATALOG_AUTH must be one of: discogs, bearer, got: %s", c.CatalogAuth))
	}

	if c.CatalogToken == "" {
		errors = append(errors, "CATALOG_TOKEN cannot be empty")
	}

	if c.VideoAPIKey == "" {
		errors = append(errors, "VIDEO_API_KEY cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.PollInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("POLL_INTERVAL must be at least 100ms, got: %s", c.PollInterval))
	}

	if c.RequeueSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.RequeueSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("AUTO_REQUEUE_SCHEDULE is invalid: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.durationProblems = append(c.durationProblems, fmt.Sprintf("%s must be a duration, got: %s", key, raw))
		return fallback
	}
	return d
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
