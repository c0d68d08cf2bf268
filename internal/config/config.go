// Package config reads LOVEJOURNEY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const prefix = "LOVEJOURNEY_"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string
	Store        string
	DBPath       string
	SessionTTL   time.Duration
	CookieSecure bool
	PromptsFile  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Minio MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether image uploads are configured.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

// Load reads the configuration from the environment. Every malformed value is
// reported in the returned error.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "text"),
		Store:         strings.ToLower(getenv("STORE", StoreMemory)),
		DBPath:        getenv("DB_PATH", "lovejourney.db"),
		PromptsFile:   getenv("PROMPTS_FILE", ""),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		Minio: MinioConfig{
			Endpoint:  getenv("MINIO_ENDPOINT", ""),
			AccessKey: getenv("MINIO_ACCESS_KEY", ""),
			SecretKey: getenv("MINIO_SECRET_KEY", ""),
			Bucket:    getenv("MINIO_BUCKET", "lovejourney"),
			PublicURL: getenv("MINIO_PUBLIC_URL", ""),
		},
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getenv("SESSION_TTL", "720h")); err != nil || cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("%sSESSION_TTL: must be a positive duration", prefix))
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getenv("COOKIE_SECURE", "false")); err != nil {
		errs = append(errs, fmt.Errorf("%sCOOKIE_SECURE: %w", prefix, err))
	}
	if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		errs = append(errs, fmt.Errorf("%sREDIS_DB: %w", prefix, err))
	}
	if cfg.Minio.UseSSL, err = strconv.ParseBool(getenv("MINIO_USE_SSL", "false")); err != nil {
		errs = append(errs, fmt.Errorf("%sMINIO_USE_SSL: %w", prefix, err))
	}
	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("%sPORT: %q is not a valid port", prefix, cfg.Port))
	}
	if cfg.Store != StoreMemory && cfg.Store != StoreSQLite {
		errs = append(errs, fmt.Errorf("%sSTORE: must be %q or %q, got %q", prefix, StoreMemory, StoreSQLite, cfg.Store))
	}
	if cfg.Minio.Enabled() && (cfg.Minio.AccessKey == "" || cfg.Minio.SecretKey == "") {
		errs = append(errs, fmt.Errorf("%sMINIO_ACCESS_KEY and %sMINIO_SECRET_KEY are required with MINIO_ENDPOINT", prefix, prefix))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(prefix + key)); v != "" {
		return v
	}
	return fallback
}
