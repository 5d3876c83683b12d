package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "astrocat.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "2h"
	defaultUploadBaseDir = "./uploads"
	defaultSessionTTL    = "24h"
	defaultSweepInterval = "1h"
)

type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration
	UploadBaseDir string

	// Chunked-upload housekeeping: sessions idle longer than SessionTTL are
	// swept together with their fragment directories.
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional; env vars win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.UploadBaseDir = getEnv("UPLOAD_BASE_DIR", defaultUploadBaseDir)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL, err = parseDurationEnv("UPLOAD_SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval, err = parseDurationEnv("UPLOAD_SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("UPLOAD_SESSION_TTL must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("UPLOAD_SWEEP_INTERVAL must be > 0")
	}
	if cfg.UploadBaseDir == "" {
		return fmt.Errorf("UPLOAD_BASE_DIR must not be empty")
	}
	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
