package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      string

	// RegistryFile is the provider/peg table. Built-in defaults apply when empty.
	RegistryFile string

	RateAPIBaseURL      string
	RateAPITokenURL     string
	RateAPIClientID     string
	RateAPIClientSecret string
	RateAPITimeout      time.Duration

	QueryTimeout      time.Duration
	RefreshInterval   time.Duration
	MaxDailyFetchDays int

	// RateLimit uses the limiter format, e.g. "300-M".
	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REGISTRY_FILE", "")
	viper.SetDefault("RATE_API_BASE_URL", "http://localhost:9090")
	viper.SetDefault("RATE_API_TOKEN_URL", "")
	viper.SetDefault("RATE_API_CLIENT_ID", "")
	viper.SetDefault("RATE_API_CLIENT_SECRET", "")
	viper.SetDefault("RATE_API_TIMEOUT", "20s")
	viper.SetDefault("QUERY_TIMEOUT", "30s")
	viper.SetDefault("REFRESH_INTERVAL", "1h")
	viper.SetDefault("MAX_DAILY_FETCH_DAYS", 366)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Quotes will only be kept in memory.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.RegistryFile = viper.GetString("REGISTRY_FILE")

	cfg.RateAPIBaseURL = viper.GetString("RATE_API_BASE_URL")
	cfg.RateAPITokenURL = viper.GetString("RATE_API_TOKEN_URL")
	cfg.RateAPIClientID = viper.GetString("RATE_API_CLIENT_ID")
	cfg.RateAPIClientSecret = viper.GetString("RATE_API_CLIENT_SECRET")
	if cfg.RateAPITokenURL != "" && (cfg.RateAPIClientID == "" || cfg.RateAPIClientSecret == "") {
		log.Println("Warning: RATE_API_TOKEN_URL is set without client credentials. Requests will be unauthenticated.")
	}

	cfg.RateAPITimeout = durationOr("RATE_API_TIMEOUT", 20*time.Second)
	cfg.QueryTimeout = durationOr("QUERY_TIMEOUT", 30*time.Second)
	cfg.RefreshInterval = durationOr("REFRESH_INTERVAL", time.Hour)

	cfg.MaxDailyFetchDays = viper.GetInt("MAX_DAILY_FETCH_DAYS")
	if cfg.MaxDailyFetchDays <= 0 {
		cfg.MaxDailyFetchDays = 366
		log.Printf("Warning: Invalid value for MAX_DAILY_FETCH_DAYS. Defaulting to %d.\n", cfg.MaxDailyFetchDays)
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	return cfg, nil
}

// durationOr parses key as a duration, falling back to def when it is unset or invalid.
// A zero duration is kept; it disables the feature it configures.
func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
