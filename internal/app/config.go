package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	MongoURL      string        `usage:"MongoDB connection URL (STORE_MONGO_URL or MONGO_URL)" flag:"mongo-url"`
	MongoDatabase string        `default:"storefront" usage:"MongoDB database name" flag:"mongo-database"`
	ImageBaseURL  string        `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	JWTSecret     string        `usage:"HMAC secret for session tokens (STORE_JWT_SECRET)" flag:"jwt-secret"`
	TokenTTL      time.Duration `default:"24h" usage:"Session token lifetime" flag:"token-ttl"`
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
	Sweep         SweepConfig
	Debug         DebugConfig
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// SweepConfig controls the background order advancement job.
type SweepConfig struct {
	Enabled  bool   `default:"false" usage:"Run the periodic order advancement job"`
	Schedule string `default:"*/15 * * * *" usage:"Cron schedule for the order advancement job"`
}

// DebugConfig holds switches that must stay off in production.
type DebugConfig struct {
	// ExposeResetTokens returns password reset tokens in the API response
	// instead of delivering them out of band.
	ExposeResetTokens bool `default:"false" usage:"Return password reset tokens in API responses (dev only)" flag:"expose-reset-tokens"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.MongoURL == "" {
		return nil, errors.New("mongo URL is required: set STORE_MONGO_URL or MONGO_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set STORE_JWT_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like MONGO_URL and PORT
// to the application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.MongoURL == "" {
		if v := os.Getenv("MONGO_URL"); v != "" {
			c.MongoURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
