// Package config loads the planner's configuration from the environment and
// the optional calendar feeds file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/campus-planner/internal/ics"
)

// Config captures environment driven configuration values for the planner service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	LogLevel          slog.Level
	CalendarFeedsPath string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields and reports every
// invalid value in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:planner.db",
		LogLevel:  slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANNER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if levelValue := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); levelValue != "" {
		level, ok := parseLogLevel(levelValue)
		if !ok {
			invalid = append(invalid, "PLANNER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	cfg.CalendarFeedsPath = strings.TrimSpace(os.Getenv("PLANNER_CALENDAR_FEEDS"))

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func parseLogLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

type feedsFile struct {
	Feeds []ics.Source `yaml:"feeds"`
}

// LoadCalendarFeeds reads the YAML feeds file at path. An empty path yields
// no feeds.
func LoadCalendarFeeds(path string) ([]ics.Source, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read calendar feeds: %w", err)
	}

	var parsed feedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse calendar feeds: %w", err)
	}

	for i, feed := range parsed.Feeds {
		if strings.TrimSpace(feed.Name) == "" {
			return nil, fmt.Errorf("config: calendar feed %d has no name", i)
		}
		if strings.TrimSpace(feed.URL) == "" {
			return nil, fmt.Errorf("config: calendar feed %q has no url", feed.Name)
		}
	}

	return parsed.Feeds, nil
}
