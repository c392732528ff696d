// Package config loads server settings from the environment.
//
// A .env.<ENV> file (ENV defaults to development) or a plain .env file is loaded
// first when present; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting of the server.
type Config struct {
	Port int

	// DBDriver is "sqlite" or "postgres".
	DBDriver string

	// DBPath is the SQLite file, used when DBDriver is sqlite.
	DBPath string

	// DatabaseURL is the PostgreSQL connection string, used when DBDriver is postgres.
	DatabaseURL string

	LogLevel slog.Level

	// LogFormat is "text" (colored, for terminals) or "json".
	LogFormat string

	// JWTSecret verifies operator tokens. Empty disables authentication.
	JWTSecret string

	// AuditBuffer is the capacity of the audit event queue.
	AuditBuffer int

	// FolioWidth is the zero padding of folios on receipts.
	FolioWidth int

	ShutdownTimeout time.Duration

	// CampusIDs restricts the campuses accepted by the ledger. Empty accepts any.
	CampusIDs []int64
}

// Load reads the optional env file and then the environment.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}
	if err := godotenv.Load(".env." + env); err != nil {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	cfg := &Config{
		DBDriver:    strings.ToLower(get("DB_DRIVER", DriverSQLite)),
		DBPath:      get("DB_PATH", "./data/caja.db"),
		DatabaseURL: get("DATABASE_URL", ""),
		LogFormat:   strings.ToLower(get("LOG_FORMAT", "text")),
		JWTSecret:   get("JWT_SECRET", ""),
	}

	var err error
	if cfg.Port, err = positiveInt("PORT", get("PORT", "8080")); err != nil {
		return nil, err
	}
	if cfg.AuditBuffer, err = positiveInt("AUDIT_BUFFER", get("AUDIT_BUFFER", "256")); err != nil {
		return nil, err
	}
	if cfg.FolioWidth, err = positiveInt("FOLIO_WIDTH", get("FOLIO_WIDTH", "6")); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.LogLevel, err = parseLevel(get("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.CampusIDs, err = parseIDs(get("CAMPUS_IDS", "")); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected sqlite or postgres", cfg.DBDriver)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: expected text or json", cfg.LogFormat)
	}
	return cfg, nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", key, value)
	}
	return n, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func parseIDs(value string) ([]int64, error) {
	if value == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid CAMPUS_IDS entry %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
