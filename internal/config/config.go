package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultSecretKey is the development signing key used when SECRET_KEY is unset.
const DefaultSecretKey = "dev-secret-key"

type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"development"`

	// Gemini AI
	GeminiAPIKey         string        `env:"GEMINI_API_KEY"`
	GeminiChatModel      string        `env:"GEMINI_CHAT_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiVisionModel    string        `env:"GEMINI_VISION_MODEL" envDefault:"gemini-1.5-flash-002"`
	GeminiConcurrentReqs int           `env:"GEMINI_CONCURRENT_REQUESTS" envDefault:"5"`
	GeminiTimeout        time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	// Sessions
	SecretKey  string        `env:"SECRET_KEY" envDefault:"dev-secret-key"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Redis (optional; empty keeps sessions in memory)
	RedisURL string `env:"REDIS_URL"`

	// Uploads
	UploadDir       string        `env:"UPLOAD_DIR" envDefault:"./static/uploads"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`
	UploadRetention time.Duration `env:"UPLOAD_RETENTION" envDefault:"1h"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	// HTTP
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"*"`

	// Honour X-Forwarded-For/X-Real-IP; only safe behind a proxy that sets them.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Logging
	LogFile  string `env:"LOG_FILE" envDefault:"app.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(fmt.Sprintf("invalid environment configuration: %v", err))
	}

	if cfg.GeminiConcurrentReqs < 1 {
		cfg.GeminiConcurrentReqs = 1
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret reports whether cookies are signed with the insecure dev key.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}
