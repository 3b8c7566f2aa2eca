package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPrefix = "UTILIZATION_AUDIT"

	DefaultRoomsURL    = "https://docs.google.com/spreadsheets/d/1CJuK0EetknB67O6CwXxXlFObHkYHhGPP/export?format=csv"
	DefaultSectionsURL = "https://docs.google.com/spreadsheets/d/13PXTH2JAk51azCj6KzwjD59OAZrKt1f0/export?format=csv"
	DefaultPeriod      = "2023/2024"
	DefaultTopN        = 10
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Config struct {
	RoomsURL     string
	SectionsURL  string
	RoomsFile    string
	SectionsFile string
	DBURL        string
	DBSchema     string

	Period string
	TopN   int

	ListenAddr  string
	HTTPTimeout time.Duration
	HTTPRetries int

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		RoomsURL:    DefaultRoomsURL,
		SectionsURL: DefaultSectionsURL,
		DBSchema:    "utilization",
		TopN:        DefaultTopN,
		ListenAddr:  ":8080",
		HTTPTimeout: 30 * time.Second,
		HTTPRetries: 3,
		LogLevel:    "info",
		LogFormat:   "json",
	}
}

// LoadFromEnv overrides fields from PREFIX_* variables. The database URL
// falls back to DATABASE_URL.
func (c *Config) LoadFromEnv(prefix string) error {
	get := func(name string) string {
		return strings.TrimSpace(os.Getenv(prefix + "_" + name))
	}

	setString := func(target *string, name string) {
		if value := get(name); value != "" {
			*target = value
		}
	}
	setString(&c.RoomsURL, "ROOMS_URL")
	setString(&c.SectionsURL, "SECTIONS_URL")
	setString(&c.RoomsFile, "ROOMS_FILE")
	setString(&c.SectionsFile, "SECTIONS_FILE")
	setString(&c.DBSchema, "DB_SCHEMA")
	setString(&c.Period, "PERIOD")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if value := get("DB_URL"); value != "" {
		c.DBURL = value
	} else if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		c.DBURL = value
	}

	if value := get("TOP"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s_TOP: %w", prefix, err)
		}
		c.TopN = parsed
	}
	if value := get("HTTP_TIMEOUT"); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s_HTTP_TIMEOUT: %w", prefix, err)
		}
		c.HTTPTimeout = parsed
	}
	if value := get("HTTP_RETRIES"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s_HTTP_RETRIES: %w", prefix, err)
		}
		c.HTTPRetries = parsed
	}
	return nil
}

func (c Config) Validate() error {
	if c.TopN <= 0 {
		return errors.New("--top must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.HTTPRetries < 0 {
		return errors.New("http retries must not be negative")
	}
	if (c.RoomsFile == "") != (c.SectionsFile == "") {
		return errors.New("--rooms-file and --sections-file must be set together")
	}
	if c.DBURL != "" && !schemaPattern.MatchString(c.DBSchema) {
		return fmt.Errorf("invalid schema name: %s", c.DBSchema)
	}
	if c.DBURL == "" && c.RoomsFile == "" && (c.RoomsURL == "" || c.SectionsURL == "") {
		return errors.New("no data source configured")
	}
	return nil
}

// Source names the provider the config selects: "postgres", "file" or
// "sheet", in that order of precedence.
func (c Config) Source() string {
	switch {
	case c.DBURL != "":
		return "postgres"
	case c.RoomsFile != "":
		return "file"
	default:
		return "sheet"
	}
}
