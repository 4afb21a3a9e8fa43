package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Salesforce   SalesforceConfig
	Sync         SyncConfig
	Registry     RegistryConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// Addr returns the listen address.
func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

// StoreConfig selects and configures the profile cache store.
type StoreConfig struct {
	Driver    string
	CacheFile string
	RedisKey  string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SalesforceConfig points at the external credential endpoint.
type SalesforceConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
}

// Timeout returns the per-fetch deadline.
func (s SalesforceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// SyncConfig tunes the refresh pass.
type SyncConfig struct {
	Concurrency int
}

// RegistryConfig locates an optional role requirements override file.
type RegistryConfig struct {
	RequirementsFile string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. An empty JWTSecret disables
// authentication entirely.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminEmail            string
	AdminPasswordHash     string
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := getEnv("STORE_DRIVER", StoreDriverFile)
	switch driver {
	case StoreDriverFile, StoreDriverPostgres, StoreDriverRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %s", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "certtrack-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "4000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("APP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:    driver,
			CacheFile: getEnv("CACHE_FILE", "cache/certCache.json"),
			RedisKey:  getEnv("REDIS_CACHE_KEY", "certtrack:cache"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Salesforce: SalesforceConfig{
			BaseURL:        getEnv("SALESFORCE_BASE_URL", "https://drm.my.salesforce-sites.com/services/apexrest/credential"),
			TimeoutSeconds: getEnvAsInt("SALESFORCE_TIMEOUT_SECONDS", 15),
			MaxRetries:     getEnvAsInt("SALESFORCE_MAX_RETRIES", 2),
		},
		Sync: SyncConfig{
			Concurrency: getEnvAsInt("SYNC_CONCURRENCY", 1),
		},
		Registry: RegistryConfig{
			RequirementsFile: os.Getenv("ROLE_REQUIREMENTS_FILE"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminEmail:            os.Getenv("ADMIN_EMAIL"),
			AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
			BcryptCost:            getEnvAsInt("BCRYPT_COST", 10),
		},
		Notification: NotificationConfig{
			WebhookURL: os.Getenv("NOTIFICATION_WEBHOOK_URL"),
		},
	}

	if cfg.Sync.Concurrency < 1 {
		cfg.Sync.Concurrency = 1
	}
	if driver == StoreDriverPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
