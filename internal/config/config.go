package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	WatchHistoryPostgres = "postgres"
	WatchHistoryRedis    = "redis"

	MediaStoreS3    = "s3"
	MediaStoreLocal = "local"
)

// AppConfig is read once at startup and handed to every component that
// needs it.
type AppConfig struct {
	Env  string
	Port string

	LogLevel  string
	LogFormat string

	StoreDriver   string
	DatabaseURL   string
	RunMigrations bool

	WatchHistoryStore string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	ClickhouseURL        string
	ClickhouseDatabase   string
	ClickhouseUsername   string
	ClickhousePassword   string
	ClickhouseMigrations string

	JWTSecret            string
	TokenValidity        time.Duration
	SessionName          string
	SessionAuthKey       string
	SessionEncryptionKey string
	AllowedOrigins       []string

	MediaStore        string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PublicBaseURL   string
	LocalMediaDir     string
	LocalMediaURL     string
	StagingDir        string
	MaxUploadBytes    int64
	RequestsPerMinute int
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c *AppConfig) AnalyticsEnabled() bool {
	return c.ClickhouseURL != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := &AppConfig{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL:   getEnv("DB_URL", ""),
		RunMigrations: getBool("RUN_MIGRATIONS", false),

		WatchHistoryStore: getEnv("WATCH_HISTORY_STORE", WatchHistoryPostgres),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getInt("REDIS_DB", 0),

		ClickhouseURL:        getEnv("CLICKHOUSE_URL", ""),
		ClickhouseDatabase:   getEnv("CLICKHOUSE_DATABASE", "default"),
		ClickhouseUsername:   getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickhousePassword:   getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickhouseMigrations: getEnv("CLICKHOUSE_MIGRATIONS", "file://./migrations/analytics"),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenValidity:        time.Duration(getInt("JWT_TOKEN_VALIDITY_HOURS", 24)) * time.Hour,
		SessionName:          getEnv("SESSION_NAME", "videotube_session"),
		SessionAuthKey:       getEnv("SESSION_AUTH_KEY", ""),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "")),

		MediaStore:        getEnv("MEDIA_STORE", MediaStoreLocal),
		S3AccessKey:       getEnv("R2_SPACES_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("R2_SPACES_SECRET_KEY", ""),
		S3Bucket:          getEnv("R2_SPACES_BUCKET", ""),
		S3Region:          getEnv("R2_SPACES_REGION", "auto"),
		S3Endpoint:        getEnv("R2_SPACES_ENDPOINT", ""),
		S3PublicBaseURL:   getEnv("R2_PUBLIC_BASE_URL", ""),
		LocalMediaDir:     getEnv("LOCAL_MEDIA_DIR", "./public/media"),
		LocalMediaURL:     getEnv("LOCAL_MEDIA_URL", "/media"),
		StagingDir:        getEnv("STAGING_DIR", "./public/temp"),
		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_MB", 512)) << 20,
		RequestsPerMinute: getInt("REQUESTS_PER_MINUTE", 100),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DB_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.WatchHistoryStore {
	case WatchHistoryPostgres, WatchHistoryRedis:
	default:
		return fmt.Errorf("unknown WATCH_HISTORY_STORE %q", c.WatchHistoryStore)
	}

	switch c.MediaStore {
	case MediaStoreS3:
		if c.S3AccessKey == "" || c.S3SecretKey == "" || c.S3Bucket == "" || c.S3Endpoint == "" {
			return errors.New("missing required R2/S3 environment variables for MEDIA_STORE=s3")
		}
	case MediaStoreLocal:
	default:
		return fmt.Errorf("unknown MEDIA_STORE %q", c.MediaStore)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}

	return nil
}

// getEnv retrieves the value of an environment variable or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
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
