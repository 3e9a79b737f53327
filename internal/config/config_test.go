package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GEMINI_API_KEY", "SECRET_KEY", "REDIS_URL", "SESSION_TTL", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "TRUST_PROXY"} {
		unsetEnv(t, key)
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Port)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("Expected empty Gemini key, got %q", cfg.GeminiAPIKey)
	}
	if !cfg.UsesDefaultSecret() {
		t.Errorf("Expected default secret key, got %q", cfg.SecretKey)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("Expected 16MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.TrustProxy {
		t.Error("Expected proxy headers to be untrusted by default")
	}
	if cfg.UploadDir != "./static/uploads" {
		t.Errorf("Expected default upload dir, got %q", cfg.UploadDir)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*Config) bool
	}{
		{"api key", "GEMINI_API_KEY", "abc123", func(c *Config) bool { return c.GeminiAPIKey == "abc123" }},
		{"secret key", "SECRET_KEY", "s3cr3t", func(c *Config) bool { return c.SecretKey == "s3cr3t" && !c.UsesDefaultSecret() }},
		{"duration", "UPLOAD_RETENTION", "90s", func(c *Config) bool { return c.UploadRetention == 90*time.Second }},
		{"integer", "RATE_LIMIT_PER_MINUTE", "7", func(c *Config) bool { return c.RateLimitPerMinute == 7 }},
		{"boolean", "TRUST_PROXY", "true", func(c *Config) bool { return c.TrustProxy }},
		{"production", "ENV", "production", func(c *Config) bool { return c.IsProduction() }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			cfg := Load()
			if !tc.check(cfg) {
				t.Errorf("Expected %s=%q to be applied, got %+v", tc.key, tc.value, cfg)
			}
		})
	}
}

func TestLoad_ClampsConcurrency(t *testing.T) {
	t.Setenv("GEMINI_CONCURRENT_REQUESTS", "0")

	cfg := Load()
	if cfg.GeminiConcurrentReqs != 1 {
		t.Errorf("Expected concurrency clamped to 1, got %d", cfg.GeminiConcurrentReqs)
	}
}

func TestLoad_PanicsOnMalformedValue(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for malformed duration")
		}
	}()

	Load()
}
