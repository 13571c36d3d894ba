package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "mathmate-dev-secret"
)

type Config struct {
	Env      string
	Addr     string
	LogLevel string

	DBDriver     string
	DBPath       string
	DatabaseURL  string
	QueryTimeout time.Duration

	JWTSecret   string
	SessionTTL  time.Duration
	RequireAuth bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Env:           strings.ToLower(GetEnv("APP_ENV", EnvDevelopment)),
		Addr:          GetEnv("ADDR", ":5001"),
		LogLevel:      GetEnv("LOG_LEVEL", "info"),
		DBDriver:      GetEnv("DB_DRIVER", "sqlite3"),
		DBPath:        GetEnv("DB_PATH", "./db/mathmate.db"),
		DatabaseURL:   GetEnv("DATABASE_URL"),
		JWTSecret:     GetEnv("JWT_SECRET"),
		RedisAddr:     GetEnv("REDIS_ADDR"),
		RedisPassword: GetEnv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.QueryTimeout, err = durationEnv("QUERY_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequireAuth, err = boolEnv("REQUIRE_AUTH", false); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks combinations that only make sense together. It fills the
// development JWT secret when none is configured outside production.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3":
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for sqlite3")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.QueryTimeout <= 0 {
		return errors.New("QUERY_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	if c.JWTSecret == "" {
		if c.Production() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	return nil
}

func (c Config) Production() bool {
	return c.Env == EnvProduction
}

func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(GetEnv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(GetEnv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(GetEnv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
