// Package config parses the process configuration from flags with
// environment-variable fallback. Schedule windows and categories have no
// sensible defaults, so they are env-only and validated up front.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/models"
)

type Config struct {
	Port          int
	DBPath        string
	AdminPassword string
	LogLevel      string
	BaseURL       string
	ContestID     string
	FinalChannel  string
	TickInterval  time.Duration
	Categories    []contest.Category
	Schedule      models.Schedule
}

// ParseFlags reads flags, falls back to environment variables and
// validates the result.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var tickStr string

	fs := flag.NewFlagSet("concours", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", 0, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database path")
	fs.StringVar(&cfg.BaseURL, "baseurl", "", "Public base URL for vote links")
	fs.StringVar(&cfg.ContestID, "contest", "", "Contest identifier (generated if not set)")
	fs.StringVar(&cfg.LogLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&tickStr, "tick", "", "Phase tick interval (e.g. 30s)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminPassword, "adminpw", "", "Admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, fmt.Errorf("invalid PORT env variable: %q", portStr)
			}
			cfg.Port = port
		} else {
			cfg.Port = 8081
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DB_PATH")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "concours.db"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.ContestID == "" {
		cfg.ContestID = os.Getenv("CONTEST_ID")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}

	if tickStr == "" {
		tickStr = os.Getenv("TICK_INTERVAL")
	}
	if tickStr == "" {
		tickStr = "1m"
	}
	tick, err := time.ParseDuration(tickStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tick interval %q: %w", tickStr, err)
	}
	cfg.TickInterval = tick

	cfg.FinalChannel = os.Getenv("FINAL_CHANNEL")
	if cfg.FinalChannel == "" {
		return Config{}, fmt.Errorf("FINAL_CHANNEL required")
	}

	cfg.Categories, err = parseCategories(os.Getenv("CATEGORIES"))
	if err != nil {
		return Config{}, err
	}

	cfg.Schedule, err = parseSchedule()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// parseCategories splits "Name=channel,Other=channel2" pairs.
func parseCategories(raw string) ([]contest.Category, error) {
	if raw == "" {
		return nil, fmt.Errorf("CATEGORIES required (Name=channel,Name2=channel2)")
	}
	var cats []contest.Category
	seen := make(map[string]bool)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, channel, ok := strings.Cut(pair, "=")
		if !ok || name == "" || channel == "" {
			return nil, fmt.Errorf("invalid category %q, want Name=channel", pair)
		}
		if seen[channel] {
			return nil, fmt.Errorf("duplicate category channel %q", channel)
		}
		seen[channel] = true
		cats = append(cats, contest.Category{Name: name, ChannelID: channel})
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("CATEGORIES required (Name=channel,Name2=channel2)")
	}
	return cats, nil
}

// parseSchedule reads the four stage windows from
// <STAGE>_START / <STAGE>_END env variables in RFC3339.
func parseSchedule() (models.Schedule, error) {
	var s models.Schedule
	windows := []struct {
		name   string
		period *models.Period
	}{
		{"SUBMISSION", &s.Submission},
		{"QUALIFICATION", &s.Qualification},
		{"SEMIFINAL", &s.Semifinal},
		{"FINAL", &s.Final},
	}
	for _, w := range windows {
		start, err := parseTimeEnv(w.name + "_START")
		if err != nil {
			return models.Schedule{}, err
		}
		end, err := parseTimeEnv(w.name + "_END")
		if err != nil {
			return models.Schedule{}, err
		}
		w.period.Start = start
		w.period.End = end
	}
	if !s.Valid() {
		return models.Schedule{}, fmt.Errorf("schedule windows must be ordered and non-empty")
	}
	return s, nil
}

func parseTimeEnv(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s required (RFC3339)", key)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return t.UnixMilli(), nil
}
