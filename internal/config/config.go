package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string // dev|prod

	Log      string
	LogLevel string

	CacheDBPath string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoTimeout    time.Duration

	AdminSecret     string
	AdminSecretHash string
	JWTSecret       string
	SessionTTL      time.Duration

	AuthorName   string
	AuthorAvatar string
	SiteURL      string

	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Load reads .env if present, then the environment, applying defaults.
// It does not log.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(key, d string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port: def("PORT", "8080"),
		Env:  strings.ToLower(def("ENV", "prod")),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def("LOGLEVEL", "info")),

		CacheDBPath: def("CACHE_DB_PATH", "./folio-cache.db"),

		MongoURI:        strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:   def("MONGO_DATABASE", "folio"),
		MongoCollection: def("MONGO_COLLECTION", "blogPosts"),

		AdminSecret:     os.Getenv("ADMIN_SECRET"),
		AdminSecretHash: strings.TrimSpace(os.Getenv("ADMIN_SECRET_HASH")),
		JWTSecret:       os.Getenv("JWT_SECRET"),

		AuthorName:   def("AUTHOR_NAME", "Admin"),
		AuthorAvatar: os.Getenv("AUTHOR_AVATAR"),
		SiteURL:      def("SITE_URL", "http://localhost:8080"),

		CORSOrigins: splitOrigins(def("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.MongoTimeout, err = parseDuration("MONGO_TIMEOUT", def("MONGO_TIMEOUT", "10s")); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", def("SESSION_TTL", "12h")); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", def("SHUTDOWN_TIMEOUT", "5s")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate returns warnings for optional features that are off, and an error for
// settings the server cannot start with.
func (c *Config) Validate() (warnings []string, err error) {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", c.Port)
	}

	if c.AdminSecret == "" && c.AdminSecretHash == "" {
		warnings = append(warnings, "ADMIN_SECRET is empty, admin endpoints are disabled")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty, admin endpoints are disabled")
	}
	if c.MongoURI == "" {
		warnings = append(warnings, "MONGO_URI is empty, posts are kept in the local cache only")
	}

	return warnings, nil
}

// RemoteEnabled reports whether a remote post store is configured.
func (c *Config) RemoteEnabled() bool {
	return c.MongoURI != ""
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}
