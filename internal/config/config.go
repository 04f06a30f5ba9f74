package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	StoreDriver string // "postgres" or "memory"
	DatabaseURL string

	// ChangeFanout is "local" or "postgres" (LISTEN/NOTIFY across replicas).
	ChangeFanout string

	Minio  MinioConfig
	LLM    LLMConfig
	Gmail  GmailConfig
	Auth   AuthConfig
	Log    LogConfig
	Intake IntakeConfig
}

type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type LLMConfig struct {
	Provider string // "googleai", "vertexai" or "none"
	Model    string
	APIKey   string
	Project  string
	Location string
}

type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	From            string
}

type AuthConfig struct {
	JWTSecret        string
	TokenExpireHours int
	// Recruiters maps an API key to the organization it may act for.
	Recruiters map[string]string
}

type LogConfig struct {
	Level  string
	Format string
}

type IntakeConfig struct {
	ScreeningTimeout time.Duration
	ScreeningPulse   time.Duration
	PendingTTL       time.Duration
	RateLimit        int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:  getenv("DATABASE_URL"),
		StoreDriver:  strings.ToLower(getenv("STORE_DRIVER")),
		ChangeFanout: strings.ToLower(orDefault(getenv("CANDIDATE_FANOUT"), "local")),
		Minio: MinioConfig{
			Endpoint:      getenv("MINIO_ENDPOINT"),
			AccessKey:     getenv("MINIO_ACCESS_KEY"),
			SecretKey:     getenv("MINIO_SECRET_KEY"),
			Bucket:        orDefault(getenv("MINIO_BUCKET"), "applications"),
			PublicBaseURL: getenv("MINIO_PUBLIC_BASE_URL"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(orDefault(getenv("LLM_PROVIDER"), "googleai")),
			Model:    orDefault(getenv("LLM_MODEL"), "gemini-2.5-flash"),
			APIKey:   getenv("GEMINI_API_KEY"),
			Project:  getenv("GOOGLE_CLOUD_PROJECT"),
			Location: orDefault(getenv("GOOGLE_CLOUD_LOCATION"), "us-central1"),
		},
		Gmail: GmailConfig{
			CredentialsPath: orDefault(getenv("GMAIL_CREDENTIALS"), "credential.json"),
			TokenPath:       orDefault(getenv("GMAIL_TOKEN"), "token.json"),
			From:            getenv("NOTIFY_FROM"),
		},
		Auth: AuthConfig{
			JWTSecret:  getenv("JWT_SECRET"),
			Recruiters: parseRecruiters(getenv("RECRUITER_KEYS")),
		},
		Log: LogConfig{
			Level:  orDefault(getenv("LOG_LEVEL"), "info"),
			Format: orDefault(getenv("LOG_FORMAT"), "text"),
		},
	}

	var err error
	if cfg.Port, err = intOrDefault(getenv("PORT"), 8080); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if cfg.Auth.TokenExpireHours, err = intOrDefault(getenv("TOKEN_EXPIRE_HOURS"), 24); err != nil {
		return nil, fmt.Errorf("TOKEN_EXPIRE_HOURS: %w", err)
	}
	if cfg.Intake.RateLimit, err = intOrDefault(getenv("RATE_LIMIT"), 30); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if cfg.Minio.UseSSL, err = boolOrDefault(getenv("MINIO_USE_SSL"), false); err != nil {
		return nil, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}
	if cfg.Intake.ScreeningTimeout, err = durationOrDefault(getenv("SCREENING_TIMEOUT"), 45*time.Second); err != nil {
		return nil, fmt.Errorf("SCREENING_TIMEOUT: %w", err)
	}
	if cfg.Intake.ScreeningPulse, err = durationOrDefault(getenv("SCREENING_PULSE"), 800*time.Millisecond); err != nil {
		return nil, fmt.Errorf("SCREENING_PULSE: %w", err)
	}
	if cfg.Intake.PendingTTL, err = durationOrDefault(getenv("PENDING_TTL"), 30*time.Minute); err != nil {
		return nil, fmt.Errorf("PENDING_TTL: %w", err)
	}

	if cfg.StoreDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = "postgres"
		} else {
			cfg.StoreDriver = "memory"
		}
	}

	return cfg, nil
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ChangeFanout {
	case "local":
	case "postgres":
		if c.StoreDriver != "postgres" {
			return fmt.Errorf("CANDIDATE_FANOUT=postgres needs the postgres store")
		}
	default:
		return fmt.Errorf("unknown CANDIDATE_FANOUT %q", c.ChangeFanout)
	}

	if c.Minio.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required")
	}

	switch c.LLM.Provider {
	case "googleai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the googleai provider")
		}
	case "vertexai":
		if c.LLM.Project == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the vertexai provider")
		}
	case "none":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	if len(c.Auth.Recruiters) > 0 && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when RECRUITER_KEYS is set")
	}

	if c.ScreeningTimeoutOutOfRange() {
		return fmt.Errorf("SCREENING_TIMEOUT must be between 1s and 5m, got %s", c.Intake.ScreeningTimeout)
	}

	return nil
}

func (c *Config) ScreeningTimeoutOutOfRange() bool {
	return c.Intake.ScreeningTimeout < time.Second || c.Intake.ScreeningTimeout > 5*time.Minute
}

// parseRecruiters reads "key1:org1,key2:org2".
func parseRecruiters(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, org, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || key == "" || org == "" {
			continue
		}
		out[key] = org
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func intOrDefault(v string, def int) (int, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

func boolOrDefault(v string, def bool) (bool, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}

func durationOrDefault(v string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	return time.ParseDuration(strings.TrimSpace(v))
}
