package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	NLU        NLUConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Amadeus    AmadeusConfig
	Geocoder   GeocoderConfig
}

// PostgreSQLConfig holds the optional search log database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the discrete fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds offer search limits
type SearchConfig struct {
	TopN          int
	MaxFallbackID int
}

// NLUConfig holds slot normalization settings
type NLUConfig struct {
	Timezone      string
	MinConfidence float64
}

// RateLimitConfig indicates how many chat requests are allowed within a given interval.
// A zero value disables limiting.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string
	Environment string
}

// OpenAIConfig holds the language-model API configuration
type OpenAIConfig struct {
	APIKey      string
	APIBase     string
	ChatModel   string
	Timeout     time.Duration
	LenientJSON bool // recover JSON wrapped in markdown or prose instead of failing
}

// AmadeusConfig holds the hotel-offers API configuration
type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	Environment  string // "test" or "production"
	BaseURL      string
	Timeout      time.Duration
}

// GeocoderConfig holds the geocoding service configuration
type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

const (
	amadeusTestURL       = "https://test.api.amadeus.com"
	amadeusProductionURL = "https://api.amadeus.com"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CHAT", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CHAT value: %w", err)
	}

	amadeusEnv := strings.ToLower(strings.TrimSpace(getEnv("AMADEUS_ENV", "test")))
	amadeusURL := amadeusTestURL
	if amadeusEnv == "production" {
		amadeusURL = amadeusProductionURL
	}

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "hotelbot"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			TopN:          getEnvAsInt("SEARCH_TOP_N", 10),
			MaxFallbackID: getEnvAsInt("SEARCH_MAX_FALLBACK_IDS", 20),
		},
		NLU: NLUConfig{
			Timezone:      getEnv("NLU_TIMEZONE", "America/New_York"),
			MinConfidence: getEnvAsFloat("NLU_MIN_CONFIDENCE", 0.6),
		},
		RateLimit: rl,
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
			APIBase:     getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
			LenientJSON: getEnvAsBool("OPENAI_LENIENT_JSON", false),
		},
		Amadeus: AmadeusConfig{
			ClientID:     strings.TrimSpace(getEnv("AMADEUS_CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getEnv("AMADEUS_CLIENT_SECRET", "")),
			Environment:  amadeusEnv,
			BaseURL:      getEnv("AMADEUS_BASE_URL", amadeusURL),
			Timeout:      getEnvAsDuration("AMADEUS_TIMEOUT", 30*time.Second),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "cheapest-hotel-bot/1.0"),
			Timeout:   getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
	}
	cfg.PostgreSQL.Enabled = cfg.PostgreSQL.DSN != "" || cfg.PostgreSQL.Host != ""

	return cfg, nil
}

// Validate reports missing credentials that the pipeline cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}
	if c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == "" {
		errs = append(errs, errors.New("Amadeus credentials missing: set AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET"))
	}
	if c.NLU.MinConfidence < 0 || c.NLU.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("NLU_MIN_CONFIDENCE must be within [0,1], got %v", c.NLU.MinConfidence))
	}
	return errors.Join(errs...)
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// parseRateLimit reads "<requests>/<interval>" such as "30/min". Empty disables limiting.
func parseRateLimit(value string) (RateLimitConfig, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RateLimitConfig{}, nil
	}

	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	var interval time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", parts[1])
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}
