// Package config loads process configuration from the environment,
// with a .env file loaded best-effort first so secrets can live
// locally without being exported into the real shell environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the process needs at startup.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Mail     MailConfig
	SMS      SMSConfig
	PSN      PSNConfig
}

// ServerConfig controls the HTTP/WebSocket listener.
type ServerConfig struct {
	IP         string
	Port       string
	CORSOrigin string
}

// DatabaseConfig is the primary Postgres store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is the cache store.
type RedisConfig struct {
	URL string
}

// AuthConfig controls password hashing and JWT issuance.
type AuthConfig struct {
	HashRounds int
	JWTSecret  string
}

// MailConfig toggles and configures the outbound mail collaborator
// the error reporter notifies through.
type MailConfig struct {
	Enabled    bool
	Server     string
	Username   string
	Password   string
	SelfAddr   string
	SelfName   string
	ServerURL  string
}

// SMSConfig toggles and configures the outbound SMS collaborator.
type SMSConfig struct {
	Enabled    bool
	URL        string
	AccountID  string
	AuthToken  string
	SelfNumber string
}

// PSNConfig seeds the PSN request queue's auth state.
type PSNConfig struct {
	NPSSO         string
	RefreshToken  string
	UseErrReport  bool
}

// Load reads configuration purely from the process environment,
// applying defaults for anything unset.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			IP:         envOr("SERVER_IP", "127.0.0.1"),
			Port:       envOr("SERVER_PORT", "8080"),
			CORSOrigin: envOr("CORS_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			URL:             envOr("DATABASE_URL", "postgres://localhost/pixelforum?sslmode=disable"),
			MaxOpenConns:    envIntOr("DATABASE_MAX_OPEN_CONNS", 16),
			MaxIdleConns:    envIntOr("DATABASE_MAX_IDLE_CONNS", 4),
			ConnMaxLifetime: time.Duration(envIntOr("DATABASE_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		},
		Redis: RedisConfig{
			URL: envOr("REDIS_URL", "redis://127.0.0.1:6379/0"),
		},
		Auth: AuthConfig{
			HashRounds: envIntOr("HASH_ROUNDS", 10),
			JWTSecret:  envOr("JWT_SECRET", "dev-secret-change-me"),
		},
		Mail: MailConfig{
			Enabled:   envBoolOr("USE_MAIL", false),
			Server:    os.Getenv("MAIL_SERVER"),
			Username:  os.Getenv("MAIL_USERNAME"),
			Password:  os.Getenv("MAIL_PASSWORD"),
			SelfAddr:  envOr("SELF_MAIL_ADDR", "noreply@pixelforum"),
			SelfName:  envOr("SELF_MAIL_ALIAS", "PixelForum"),
			ServerURL: os.Getenv("SERVER_URL"),
		},
		SMS: SMSConfig{
			Enabled:    envBoolOr("USE_SMS", false),
			URL:        os.Getenv("TWILIO_URL"),
			AccountID:  os.Getenv("TWILIO_ACCOUNT_ID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			SelfNumber: os.Getenv("TWILIO_SELF_NUMBER"),
		},
		PSN: PSNConfig{
			NPSSO:        os.Getenv("PSN_NPSSO"),
			RefreshToken: os.Getenv("PSN_REFRESH_TOKEN"),
			UseErrReport: envBoolOr("USE_REPORT", false),
		},
	}
}

// LoadFromEnv loads a .env file if present (no error if missing, so
// production deployments that inject real env vars keep working) and
// then loads Config from the environment.
func LoadFromEnv() *Config {
	_ = godotenv.Load()
	return Load()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
