package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest signing secret accepted at startup
const MinSecretLength = 32

// Config holds all service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Quota    QuotaConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Type string // postgres, memory
	Seed bool   // load demo tenants and users into the memory store
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the backend for login attempt counters
type CacheConfig struct {
	Type string // memory, redis
}

// AuthConfig holds token and credential settings
type AuthConfig struct {
	JWTSecret          string
	JWTAlgorithm       string
	TokenTTL           time.Duration
	BcryptCost         int
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
}

// QuotaConfig holds plan limits
type QuotaConfig struct {
	FreePlanNoteLimit int
	Strict            bool
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from the environment, loading a .env file first if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		Server: ServerConfig{
			Host:         e.str("SERVER_HOST", "0.0.0.0"),
			Port:         e.integer("SERVER_PORT", 8080),
			ReadTimeout:  e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: e.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     e.str("DB_HOST", "localhost"),
			Port:     e.integer("DB_PORT", 5432),
			User:     e.str("DB_USER", "postgres"),
			Password: e.str("DB_PASSWORD", ""),
			DBName:   e.str("DB_NAME", "notes"),
			SSLMode:  e.str("DB_SSLMODE", "disable"),
			LogLevel: e.str("DB_LOG_LEVEL", "warn"),
		},
		Store: StoreConfig{
			Type: e.str("STORE_TYPE", "postgres"),
			Seed: e.boolean("STORE_SEED", true),
		},
		Redis: RedisConfig{
			Host:     e.str("REDIS_HOST", "localhost"),
			Port:     e.integer("REDIS_PORT", 6379),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.integer("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Type: e.str("CACHE_TYPE", "memory"),
		},
		Auth: AuthConfig{
			JWTSecret:          e.str("JWT_SECRET", ""),
			JWTAlgorithm:       e.str("JWT_ALGORITHM", "HS256"),
			TokenTTL:           e.duration("TOKEN_TTL", 60*time.Minute),
			BcryptCost:         e.integer("BCRYPT_COST", bcrypt.DefaultCost),
			LoginMaxAttempts:   e.integer("LOGIN_MAX_ATTEMPTS", 5),
			LoginAttemptWindow: e.duration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
		},
		Quota: QuotaConfig{
			FreePlanNoteLimit: e.integer("FREE_PLAN_NOTE_LIMIT", 3),
			Strict:            e.boolean("QUOTA_STRICT", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: e.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: e.list("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: e.list("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
		},
		Log: LogConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: e.boolean("METRICS_ENABLED", true),
		},
	}

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	return cfg, nil
}

// Validate checks the configuration and fails on anything the service cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.LoginMaxAttempts < 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must not be negative"))
	}
	if c.Quota.FreePlanNoteLimit < 0 {
		errs = append(errs, errors.New("FREE_PLAN_NOTE_LIMIT must not be negative"))
	}
	if c.Store.Type != "postgres" && c.Store.Type != "memory" {
		errs = append(errs, fmt.Errorf("unsupported STORE_TYPE %q", c.Store.Type))
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		errs = append(errs, fmt.Errorf("unsupported CACHE_TYPE %q", c.Cache.Type))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func (e *env) boolean(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func (e *env) list(key string, fallback []string) []string {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		log.Warn().Str("key", key).Msg("Empty list in environment, using defaults")
		return fallback
	}
	return out
}
