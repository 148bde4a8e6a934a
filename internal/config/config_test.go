package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:3000 ,,https://videotube.dev")
	t.Setenv("MAX_UPLOAD_MB", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MediaStore != MediaStoreLocal || cfg.WatchHistoryStore != WatchHistoryPostgres {
		t.Errorf("unexpected defaults: media=%q history=%q", cfg.MediaStore, cfg.WatchHistoryStore)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.TokenValidity != 24*time.Hour {
		t.Errorf("TokenValidity = %v", cfg.TokenValidity)
	}
	if cfg.AnalyticsEnabled() {
		t.Errorf("analytics should be off without CLICKHOUSE_URL")
	}

	want := []string{"http://localhost:3000", "https://videotube.dev"}
	if diff := cmp.Diff(want, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "DB_URL": ""}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"unknown history store", map[string]string{"STORE_DRIVER": "memory", "WATCH_HISTORY_STORE": "memcached"}},
		{"s3 without credentials", map[string]string{"STORE_DRIVER": "memory", "MEDIA_STORE": "s3"}},
		{"production without secret", map[string]string{"STORE_DRIVER": "memory", "ENV": "production", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Errorf("expected Load() to fail")
			}
		})
	}
}

func TestGetIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if got := getInt("REDIS_DB", 3); got != 3 {
		t.Errorf("getInt = %d, want 3", got)
	}
}
