package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		ENV_KEY_PORT, ENV_KEY_ASSET_STORE, ENV_KEY_ASSET_VIRTUAL_ROOT, ENV_KEY_ASSET_STORE_ROOT,
		ENV_KEY_ASSET_SERVE_PREFIX, ENV_KEY_ASSET_MAX_UPLOAD_BYTES, ENV_KEY_LOCK_TTL_SECONDS,
		ENV_KEY_WORKER_CONCURRENCY, ENV_KEY_REDIS_HOST, ENV_KEY_LOG_LEVEL, ENV_KEY_OTEL_SERVICE_NAME,
		ENV_KEY_HYDRATE_SCHEDULE, ENV_KEY_HYDRATE_BATCH,
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Assets.Store != STORE_EMBED {
		t.Errorf("Store = %q", cfg.Assets.Store)
	}
	if cfg.Assets.VirtualRoot != "/assets" || cfg.Assets.StoreRoot != "static/assets" {
		t.Errorf("roots = %q -> %q", cfg.Assets.VirtualRoot, cfg.Assets.StoreRoot)
	}
	if cfg.Assets.ServePrefix != "/api/v1" {
		t.Errorf("ServePrefix = %q", cfg.Assets.ServePrefix)
	}
	if cfg.Assets.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.Assets.MaxUploadBytes)
	}
	if cfg.LockTTL != 10*time.Second {
		t.Errorf("LockTTL = %v", cfg.LockTTL)
	}
	if cfg.WorkerConcurrency != 10 {
		t.Errorf("WorkerConcurrency = %d", cfg.WorkerConcurrency)
	}
	if cfg.RedisAddr() != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr())
	}
	if cfg.HydrateSchedule != "@every 15m" || cfg.HydrateBatch != 200 {
		t.Errorf("hydrate = %q / %d", cfg.HydrateSchedule, cfg.HydrateBatch)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.OTEL.ServiceName != "showcase" {
		t.Errorf("ServiceName = %q", cfg.OTEL.ServiceName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(ENV_KEY_PORT, "9090")
	t.Setenv(ENV_KEY_ASSET_STORE, "MinIO")
	t.Setenv(ENV_KEY_ASSET_MAX_UPLOAD_BYTES, "1024")
	t.Setenv(ENV_KEY_REDIS_HOST, "cache")
	t.Setenv(ENV_KEY_REDIS_PORT, "")
	t.Setenv(ENV_KEY_LOCK_TTL_SECONDS, "3")
	t.Setenv(ENV_KEY_WORKER_CONCURRENCY, "-1")
	t.Setenv(ENV_KEY_DB_USER, "u")
	t.Setenv(ENV_KEY_DB_PASSWORD, "p")
	t.Setenv(ENV_KEY_DB_HOST, "h")
	t.Setenv(ENV_KEY_DB_PORT, "5432")
	t.Setenv(ENV_KEY_DB_DATABASE, "d")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Assets.Store != STORE_MINIO {
		t.Errorf("Store = %q", cfg.Assets.Store)
	}
	if cfg.Assets.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.Assets.MaxUploadBytes)
	}
	if cfg.RedisAddr() != "cache:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr())
	}
	if cfg.LockTTL != 3*time.Second {
		t.Errorf("LockTTL = %v", cfg.LockTTL)
	}
	if cfg.WorkerConcurrency != 10 {
		t.Errorf("WorkerConcurrency = %d", cfg.WorkerConcurrency)
	}
	if got, want := cfg.DSN(), "postgres://u:p@h:5432/d?sslmode=disable"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{ENV_KEY_PORT, "eighty"},
		{ENV_KEY_ASSET_STORE, "ftp"},
		{ENV_KEY_LOCK_TTL_SECONDS, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q: expected error", tt.key, tt.val)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"noise": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
