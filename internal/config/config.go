package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Env             string        `envconfig:"ENV" default:"development"`
	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"http://localhost:8000"`
	APITimeout      time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	DBDSN           string        `envconfig:"DB_DSN" default:"elyukal.db"`
	LogFile         string        `envconfig:"LOG_FILE" default:"./elyukal.log"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	TemplatesDir    string        `envconfig:"TEMPLATES_DIR" default:"./web/templates"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"./web/static"`
	StagingTTL      time.Duration `envconfig:"STAGING_TTL" default:"2h"`
	StagingMaxBytes int64         `envconfig:"STAGING_MAX_BYTES" default:"10485760"`
	BodyLimit       int           `envconfig:"BODY_LIMIT" default:"33554432"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"false"`
	ApproveStatus   string        `envconfig:"APPLICATION_APPROVE_STATUS" default:"accepted"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	SessionIdle     time.Duration `envconfig:"SESSION_IDLE" default:"12h"`
}

// Production reports whether templates should be cached instead of reloaded per request.
func (c Config) Production() bool { return c.Env == "production" }

func Load() Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s ENV=%s API_BASE_URL=%s DB_DSN=%s LOG_FILE=%s REDIS=%t",
		cfg.Port, cfg.Env, cfg.APIBaseURL, cfg.DBDSN, cfg.LogFile, cfg.RedisURL != "")
	return cfg
}

// FromEnv reads the process environment without touching .env.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.StagingMaxBytes <= 0 {
		return Config{}, errors.New("STAGING_MAX_BYTES must be positive")
	}
	if cfg.BodyLimit < int(cfg.StagingMaxBytes) {
		return Config{}, errors.New("BODY_LIMIT must be at least STAGING_MAX_BYTES")
	}
	return cfg, nil
}
