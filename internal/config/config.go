package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string
	APIURL          string
	UpstreamTimeout time.Duration

	// CORS
	CORSAllowOrigins []string

	StorageDriver string
	StorageDSN    string
	RunMigrations bool
	// StorageTTL is the sliding expiry of session keys (redis only).
	StorageTTL time.Duration

	// CartIdleTTL is how long an unused session cart stays in memory.
	CartIdleTTL time.Duration

	// Optional backends; empty disables the feature.
	RabbitMQURL string
	MongoDBURI  string

	SessionCookie string

	LogLevel  string
	LogFormat string
}

// file mirrors the YAML config file. Every key is optional.
type file struct {
	Port             string `yaml:"port"`
	APIURL           string `yaml:"api_url"`
	UpstreamTimeout  string `yaml:"upstream_timeout"`
	CORSAllowOrigins string `yaml:"cors_allow_origins"`
	StorageDriver    string `yaml:"storage_driver"`
	StorageDSN       string `yaml:"storage_dsn"`
	RunMigrations    string `yaml:"run_migrations"`
	StorageTTL       string `yaml:"storage_ttl"`
	CartIdleTTL      string `yaml:"cart_idle_ttl"`
	RabbitMQURL      string `yaml:"rabbitmq_url"`
	MongoDBURI       string `yaml:"mongodb_uri"`
	SessionCookie    string `yaml:"session_cookie"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
}

// Load reads STOREFRONT_CONFIG (if set) and then the environment. Env vars
// win over the file, the file wins over defaults.
func Load() (Config, error) {
	var f file
	if path := strings.TrimSpace(os.Getenv("STOREFRONT_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &f); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:            getenv("PORT", or(f.Port, "3000")),
		APIURL:          strings.TrimRight(getenv("STOREFRONT_API_URL", or(f.APIURL, "http://localhost:8080/api")), "/"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", or(f.UpstreamTimeout, "10s")), 10*time.Second),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", or(f.CORSAllowOrigins, "*"))),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", or(f.StorageDriver, "sqlite"))),
		StorageDSN:    getenv("STORAGE_DSN", or(f.StorageDSN, "storefront.db")),
		RunMigrations: parseBool(getenv("RUN_MIGRATIONS", or(f.RunMigrations, "true")), true),
		StorageTTL:    parseDuration(getenv("STORAGE_TTL", or(f.StorageTTL, "720h")), 720*time.Hour),

		CartIdleTTL: parseDuration(getenv("CART_IDLE_TTL", or(f.CartIdleTTL, "30m")), 30*time.Minute),

		RabbitMQURL: getenv("RABBITMQ_URL", f.RabbitMQURL),
		MongoDBURI:  getenv("MONGODB_URI", f.MongoDBURI),

		SessionCookie: getenv("SESSION_COOKIE", or(f.SessionCookie, "sf_session")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", or(f.LogLevel, "info"))),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", or(f.LogFormat, "json"))),
	}

	switch cfg.StorageDriver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
