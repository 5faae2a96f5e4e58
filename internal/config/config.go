// Package config loads the verdict service's configuration once at
// startup from environment variables (optionally seeded by a local .env
// file), via spf13/viper.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup. Nothing here
// reloads live; a new process is required to pick up a changed value.
type Config struct {
	Port        int
	CORSOrigins string
	LogLevel    string

	ImageSafetyThreshold string
	GlobalDailyLimit     int
	PerClientDailyLimit  int
	RateLimitTimezone    string

	CacheTTLDays    int
	CacheBackendURL string

	YouTubeAPIKey string
	VisionAPIKey  string
	GeminiAPIKey  string
}

// Load reads a local .env file if present (never required — a missing
// file is not an error) and then loads configuration from the environment,
// falling back to the defaults below for anything unset.
func Load() (*Config, error) {
	// godotenv.Load only populates vars not already set, so real
	// environment variables always win over a developer's .env file.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	setDefaults()

	cfg := &Config{
		Port:                 viper.GetInt("PORT"),
		CORSOrigins:          viper.GetString("CORS_ORIGINS"),
		LogLevel:             viper.GetString("LOG_LEVEL"),
		ImageSafetyThreshold: viper.GetString("IMAGE_SAFETY_THRESHOLD"),
		GlobalDailyLimit:     viper.GetInt("GLOBAL_DAILY_LIMIT"),
		PerClientDailyLimit:  viper.GetInt("PER_CLIENT_DAILY_LIMIT"),
		RateLimitTimezone:    viper.GetString("RATE_LIMIT_TIMEZONE"),
		CacheTTLDays:         viper.GetInt("CACHE_TTL_DAYS"),
		CacheBackendURL:      viper.GetString("CACHE_BACKEND_URL"),
		YouTubeAPIKey:        viper.GetString("YOUTUBE_API_KEY"),
		VisionAPIKey:         viper.GetString("VISION_API_KEY"),
		GeminiAPIKey:         viper.GetString("GEMINI_API_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("IMAGE_SAFETY_THRESHOLD", "POSSIBLE")
	viper.SetDefault("GLOBAL_DAILY_LIMIT", 150)
	viper.SetDefault("PER_CLIENT_DAILY_LIMIT", 8)
	viper.SetDefault("RATE_LIMIT_TIMEZONE", "UTC")
	viper.SetDefault("CACHE_TTL_DAYS", 7)
	viper.SetDefault("CACHE_BACKEND_URL", "")
}

// validate rejects a configuration missing the credentials every request
// path depends on, rather than letting the service boot and fail on first
// request.
func (c *Config) validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("config: YOUTUBE_API_KEY is required")
	}
	if c.VisionAPIKey == "" {
		return fmt.Errorf("config: VISION_API_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	if _, err := time.LoadLocation(c.RateLimitTimezone); err != nil {
		return fmt.Errorf("config: invalid RATE_LIMIT_TIMEZONE %q: %w", c.RateLimitTimezone, err)
	}
	return nil
}

// CacheTTL converts CacheTTLDays into a time.Duration for the cache layer.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// Location resolves RateLimitTimezone into a *time.Location.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.RateLimitTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
