package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	Prepaid PrepaidAPIConfig
	Tokens  TokenConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// PrepaidAPIConfig configures the remote prepaid history service.
type PrepaidAPIConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	BreakerEnabled bool
	ConfigPath     string
}

// TokenConfig configures where the long-lived API token is persisted.
type TokenConfig struct {
	Store     string
	Principal string
	Seed      string
	CacheTTL  time.Duration

	// EncryptionKey seals stored tokens when set.
	EncryptionKey string
}

const (
	TokenStoreSQL   = "sql"
	TokenStoreRedis = "redis"
	TokenStoreNone  = "none"
)

const defaultPrepaidAPIURL = "https://api.craftly.uz/api/bot"

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "prepaid"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		Prepaid: PrepaidAPIConfig{
			BaseURL:        strings.TrimRight(strings.TrimSpace(getenv("PREPAID_API_URL", defaultPrepaidAPIURL)), "/"),
			Timeout:        getenvDuration("PREPAID_API_TIMEOUT", 12*time.Second),
			MaxRetries:     getenvInt("PREPAID_API_MAX_RETRIES", 2),
			RetryBaseDelay: getenvDuration("PREPAID_API_RETRY_BASE_DELAY", 100*time.Millisecond),
			RetryMaxDelay:  getenvDuration("PREPAID_API_RETRY_MAX_DELAY", 2*time.Second),
			BreakerEnabled: getenvBool("PREPAID_API_BREAKER_ENABLED", true),
			ConfigPath:     strings.TrimSpace(getenv("PREPAID_CONFIG_PATH", "")),
		},
		Tokens: TokenConfig{
			Store:         normalizeTokenStore(getenv("TOKEN_STORE", TokenStoreSQL)),
			Principal:     strings.TrimSpace(getenv("TOKEN_PRINCIPAL", "default")),
			Seed:          strings.TrimSpace(getenv("PREPAID_API_TOKEN", "")),
			CacheTTL:      getenvDuration("TOKEN_CACHE_TTL", 30*time.Second),
			EncryptionKey: strings.TrimSpace(getenv("TOKEN_ENCRYPTION_KEY", "")),
		},
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "prepaid.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
	}

	return cfg
}

func normalizeTokenStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TokenStoreRedis:
		return TokenStoreRedis
	case TokenStoreNone, "off", "disabled":
		return TokenStoreNone
	default:
		return TokenStoreSQL
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
