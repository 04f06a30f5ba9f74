package config

import (
	"strings"
	"testing"
	"time"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.ChangeFanout != "local" {
		t.Errorf("ChangeFanout = %q, want local", cfg.ChangeFanout)
	}
	if cfg.Minio.Bucket != "applications" {
		t.Errorf("Bucket = %q", cfg.Minio.Bucket)
	}
	if cfg.LLM.Provider != "googleai" || cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Intake.ScreeningTimeout != 45*time.Second {
		t.Errorf("ScreeningTimeout = %s", cfg.Intake.ScreeningTimeout)
	}
	if cfg.Intake.ScreeningPulse != 800*time.Millisecond {
		t.Errorf("ScreeningPulse = %s", cfg.Intake.ScreeningPulse)
	}
	if cfg.Intake.PendingTTL != 30*time.Minute {
		t.Errorf("PendingTTL = %s", cfg.Intake.PendingTTL)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("TokenExpireHours = %d", cfg.Auth.TokenExpireHours)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":              "9090",
		"DATABASE_URL":      "postgres://u:p@localhost/db",
		"MINIO_USE_SSL":     "true",
		"LLM_PROVIDER":      "VertexAI",
		"SCREENING_TIMEOUT": "30s",
		"RECRUITER_KEYS":    "k1:acme, bad, k2:globex",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.StoreDriver != "postgres" {
		t.Errorf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if !cfg.Minio.UseSSL {
		t.Error("expected UseSSL")
	}
	if cfg.LLM.Provider != "vertexai" {
		t.Errorf("Provider = %q", cfg.LLM.Provider)
	}
	if cfg.Intake.ScreeningTimeout != 30*time.Second {
		t.Errorf("ScreeningTimeout = %s", cfg.Intake.ScreeningTimeout)
	}
	if len(cfg.Auth.Recruiters) != 2 || cfg.Auth.Recruiters["k2"] != "globex" {
		t.Errorf("Recruiters = %v", cfg.Auth.Recruiters)
	}
}

func TestFromEnvRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"PORT":              "eighty",
		"MINIO_USE_SSL":     "maybe",
		"SCREENING_TIMEOUT": "soon",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(envOf(map[string]string{key: val}))
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error mentioning %s, got %v", key, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, _ := FromEnv(envOf(map[string]string{
			"MINIO_ENDPOINT": "localhost:9000",
			"GEMINI_API_KEY": "key",
		}))
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = "postgres" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"postgres fanout on memory store", func(c *Config) { c.ChangeFanout = "postgres" }, "CANDIDATE_FANOUT"},
		{"postgres fanout", func(c *Config) {
			c.StoreDriver, c.DatabaseURL, c.ChangeFanout = "postgres", "postgres://localhost/intake", "postgres"
		}, ""},
		{"unknown fanout", func(c *Config) { c.ChangeFanout = "redis" }, "CANDIDATE_FANOUT"},
		{"missing minio", func(c *Config) { c.Minio.Endpoint = "" }, "MINIO_ENDPOINT"},
		{"googleai without key", func(c *Config) { c.LLM.APIKey = "" }, "GEMINI_API_KEY"},
		{"vertex without project", func(c *Config) { c.LLM.Provider = "vertexai" }, "GOOGLE_CLOUD_PROJECT"},
		{"provider none", func(c *Config) { c.LLM.Provider = "none"; c.LLM.APIKey = "" }, ""},
		{"recruiters without secret", func(c *Config) { c.Auth.Recruiters = map[string]string{"k": "org"} }, "JWT_SECRET"},
		{"timeout too long", func(c *Config) { c.Intake.ScreeningTimeout = time.Hour }, "SCREENING_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
