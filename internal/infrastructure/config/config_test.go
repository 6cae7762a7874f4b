package config

import (
	"context"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.StoreDriver != DriverMemory || cfg.SessionDriver != DriverMemory {
		t.Errorf("expected memory drivers, got %s/%s", cfg.StoreDriver, cfg.SessionDriver)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.Session.TTL)
	}
	if cfg.Geocoder.Country != "Brasil" || cfg.Geocoder.Timeout != 5*time.Second {
		t.Errorf("unexpected geocoder config: %+v", cfg.Geocoder)
	}
	if cfg.AuthRateLimit != "10-M" || cfg.AuditWorkers != 4 {
		t.Errorf("unexpected limits: %s / %d", cfg.AuthRateLimit, cfg.AuditWorkers)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development environment by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/focoalerta")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" || cfg.IsDevelopment() {
		t.Errorf("unexpected port/env: %s/%s", cfg.Port, cfg.Env)
	}
	if cfg.Session.TTL != 2*time.Hour || !cfg.Session.CookieSecure {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "SESSION_SECRET"},
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "at least 16"},
		{"unknown store", map[string]string{"SESSION_SECRET": testSecret, "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"postgres without url", map[string]string{"SESSION_SECRET": testSecret, "STORE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown session driver", map[string]string{"SESSION_SECRET": testSecret, "SESSION_DRIVER": "memcached"}, "SESSION_DRIVER"},
		{"non-positive ttl", map[string]string{"SESSION_SECRET": testSecret, "SESSION_TTL": "0s"}, "SESSION_TTL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
