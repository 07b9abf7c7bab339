package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	ENV_KEY_PORT      = "PORT"
	ENV_KEY_APP_ENV   = "APP_ENV"
	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_ASSET_STORE            = "ASSET_STORE"
	ENV_KEY_ASSET_STORE_DIR        = "ASSET_STORE_DIR"
	ENV_KEY_ASSET_VIRTUAL_ROOT     = "ASSET_VIRTUAL_ROOT"
	ENV_KEY_ASSET_STORE_ROOT       = "ASSET_STORE_ROOT"
	ENV_KEY_ASSET_SERVE_PREFIX     = "ASSET_SERVE_PREFIX"
	ENV_KEY_ASSET_MAX_UPLOAD_BYTES = "ASSET_MAX_UPLOAD_BYTES"

	ENV_KEY_MINIO_ENDPOINT   = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY = "MINIO_SECRET_KEY"
	ENV_KEY_MINIO_BUCKET     = "MINIO_BUCKET"
	ENV_KEY_MINIO_USE_SSL    = "MINIO_USE_SSL"

	ENV_KEY_S3_BUCKET = "S3_BUCKET"

	ENV_KEY_REDIS_HOST     = "REDIS_HOST"
	ENV_KEY_REDIS_PORT     = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD = "REDIS_PASSWORD"

	ENV_KEY_LOCK_TTL_SECONDS   = "LOCK_TTL_SECONDS"
	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"
	ENV_KEY_HYDRATE_SCHEDULE   = "HYDRATE_SCHEDULE"
	ENV_KEY_HYDRATE_BATCH      = "HYDRATE_BATCH"

	ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"
	ENV_KEY_OTEL_SERVICE_NAME           = "OTEL_SERVICE_NAME"
)

// Asset store backends.
const (
	STORE_EMBED = "embed"
	STORE_DIR   = "dir"
	STORE_MINIO = "minio"
	STORE_S3    = "s3"
)

type Config struct {
	Port     int
	AppEnv   string
	LogLevel slog.Level

	DB struct {
		Host               string
		Port               string
		User               string
		Password           string
		Database           string
		MaxOpenConnections int
	}

	Assets struct {
		Store          string
		Dir            string
		VirtualRoot    string
		StoreRoot      string
		ServePrefix    string
		MaxUploadBytes int64
	}

	MinIO struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}

	S3 struct {
		Bucket string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	LockTTL           time.Duration
	WorkerConcurrency int

	// HydrateSchedule is a cron spec for the scheduler's sweep.
	HydrateSchedule string
	HydrateBatch    int

	OTEL struct {
		Endpoint    string
		ServiceName string
	}
}

// DSN is the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Database)
}

// RedisAddr is empty when no redis host is configured.
func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	port := c.Redis.Port
	if port == "" {
		port = "6379"
	}
	return c.Redis.Host + ":" + port
}

// Load reads the environment once. Malformed numeric values are reported
// instead of silently replaced.
func Load() (Config, error) {
	var (
		cfg Config
		err error
	)

	if cfg.Port, err = intEnv(ENV_KEY_PORT, 8080); err != nil {
		return cfg, err
	}
	cfg.AppEnv = strEnv(ENV_KEY_APP_ENV, "local")
	cfg.LogLevel = ParseLevel(os.Getenv(ENV_KEY_LOG_LEVEL))

	cfg.DB.Host = os.Getenv(ENV_KEY_DB_HOST)
	cfg.DB.Port = os.Getenv(ENV_KEY_DB_PORT)
	cfg.DB.User = os.Getenv(ENV_KEY_DB_USER)
	cfg.DB.Password = os.Getenv(ENV_KEY_DB_PASSWORD)
	cfg.DB.Database = os.Getenv(ENV_KEY_DB_DATABASE)
	if cfg.DB.MaxOpenConnections, err = intEnv(ENV_KEY_DB_MAX_OPEN_CONNECTIONS, 0); err != nil {
		return cfg, err
	}

	cfg.Assets.Store = strings.ToLower(strEnv(ENV_KEY_ASSET_STORE, STORE_EMBED))
	switch cfg.Assets.Store {
	case STORE_EMBED, STORE_DIR, STORE_MINIO, STORE_S3:
	default:
		return cfg, fmt.Errorf("%s: unknown store %q", ENV_KEY_ASSET_STORE, cfg.Assets.Store)
	}
	cfg.Assets.Dir = strEnv(ENV_KEY_ASSET_STORE_DIR, ".")
	cfg.Assets.VirtualRoot = strEnv(ENV_KEY_ASSET_VIRTUAL_ROOT, "/assets")
	cfg.Assets.StoreRoot = strEnv(ENV_KEY_ASSET_STORE_ROOT, "static/assets")
	cfg.Assets.ServePrefix = strEnv(ENV_KEY_ASSET_SERVE_PREFIX, "/api/v1")
	maxUpload, err := intEnv(ENV_KEY_ASSET_MAX_UPLOAD_BYTES, 10<<20)
	if err != nil {
		return cfg, err
	}
	cfg.Assets.MaxUploadBytes = int64(maxUpload)

	cfg.MinIO.Endpoint = os.Getenv(ENV_KEY_MINIO_ENDPOINT)
	cfg.MinIO.AccessKey = os.Getenv(ENV_KEY_MINIO_ACCESS_KEY)
	cfg.MinIO.SecretKey = os.Getenv(ENV_KEY_MINIO_SECRET_KEY)
	cfg.MinIO.Bucket = os.Getenv(ENV_KEY_MINIO_BUCKET)
	cfg.MinIO.UseSSL = strings.EqualFold(strEnv(ENV_KEY_MINIO_USE_SSL, "true"), "true")

	cfg.S3.Bucket = os.Getenv(ENV_KEY_S3_BUCKET)

	cfg.Redis.Host = os.Getenv(ENV_KEY_REDIS_HOST)
	cfg.Redis.Port = os.Getenv(ENV_KEY_REDIS_PORT)
	cfg.Redis.Password = os.Getenv(ENV_KEY_REDIS_PASSWORD)

	ttl, err := intEnv(ENV_KEY_LOCK_TTL_SECONDS, 10)
	if err != nil {
		return cfg, err
	}
	cfg.LockTTL = time.Duration(ttl) * time.Second

	if cfg.WorkerConcurrency, err = intEnv(ENV_KEY_WORKER_CONCURRENCY, 10); err != nil {
		return cfg, err
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 10
	}

	cfg.HydrateSchedule = strEnv(ENV_KEY_HYDRATE_SCHEDULE, "@every 15m")
	if cfg.HydrateBatch, err = intEnv(ENV_KEY_HYDRATE_BATCH, 200); err != nil {
		return cfg, err
	}

	cfg.OTEL.Endpoint = os.Getenv(ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT)
	cfg.OTEL.ServiceName = strEnv(ENV_KEY_OTEL_SERVICE_NAME, "showcase")

	return cfg, nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func strEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
