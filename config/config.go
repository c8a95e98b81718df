package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrMissingSecret - SECRET_KEY is not set, the server must not start
var ErrMissingSecret = errors.New("SECRET_KEY is not set")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Hash     HashConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	StaticDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type HashConfig struct {
	Cost int
}

// Load - reads configuration from the environment.
// The signing secret is mandatory, everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			StaticDir:    getEnv("STATIC_DIR", "static"),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "taskboard"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SECRET_KEY", ""),
			CookieName: getEnv("SESSION_COOKIE", "auth"),
			TTL:        getEnvAsDuration("SESSION_TTL", 60*time.Minute),
		},
		Hash: HashConfig{
			Cost: getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		},
	}

	if cfg.Session.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.Hash.Cost < bcrypt.MinCost || cfg.Hash.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, cfg.Hash.Cost)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "memory" {
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// DSN - postgres:// URL for lib/pq; credentials and names are escaped
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
