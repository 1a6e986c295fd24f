// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port string
	Env  string

	GoogleMapsAPIKey string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	IntentProvider   string // "gemini" or "openai"
	KakaoRESTAPIKey  string
	WeatherAPIKey    string
	GTFSFeedURL      string // optional real-time departures feed

	Language string
	// The two routing preference settings are mutually exclusive in effect;
	// prefer-less-walking wins when both are set.
	PreferLessWalking    bool
	PreferFewerTransfers bool
	MoveThresholdM       float64

	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback, applying sensible defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "3000"),
		Env:                  getEnv("ENV", "development"),
		GoogleMapsAPIKey:     getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		IntentProvider:       getEnv("INTENT_PROVIDER", "gemini"),
		KakaoRESTAPIKey:      getEnv("KAKAO_REST_API_KEY", ""),
		WeatherAPIKey:        getEnv("OPENWEATHER_API_KEY", ""),
		GTFSFeedURL:          getEnv("GTFS_RT_FEED_URL", ""),
		Language:             getEnv("LANGUAGE", "ko"),
		PreferLessWalking:    getBoolEnv("PREFER_LESS_WALKING", false),
		PreferFewerTransfers: getBoolEnv("PREFER_FEWER_TRANSFERS", false),
		MoveThresholdM:       getFloatEnv("NEARBY_MOVE_THRESHOLD_M", 15),
		CacheTTL:             getDurationEnv("CACHE_TTL_SECONDS", 120) * time.Second,
		HTTPTimeout:          getDurationEnv("HTTP_TIMEOUT_SECONDS", 10) * time.Second,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.GoogleMapsAPIKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	switch c.IntentProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when INTENT_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when INTENT_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown INTENT_PROVIDER %q", c.IntentProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
