package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration for the console service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	SessionTTL    time.Duration
	UndoDepth     int
	CommitTimeout time.Duration
	ViewID        string
	ChartDays     int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; required values are
// validated and reported together so an operator sees every problem at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:console.db?_pragma=foreign_keys(1)",
		SessionTTL:    12 * time.Hour,
		UndoDepth:     5,
		CommitTimeout: 10 * time.Second,
		ViewID:        "default",
		ChartDays:     30,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CONSOLE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONSOLE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONSOLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("CONSOLE_SESSION_SECRET")); secret == "" {
		missing = append(missing, "CONSOLE_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CONSOLE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CONSOLE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if depthValue := strings.TrimSpace(os.Getenv("CONSOLE_UNDO_DEPTH")); depthValue != "" {
		depth, err := strconv.Atoi(depthValue)
		if err != nil || depth <= 0 {
			invalid = append(invalid, "CONSOLE_UNDO_DEPTH")
		} else {
			cfg.UndoDepth = depth
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CONSOLE_COMMIT_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CONSOLE_COMMIT_TIMEOUT")
		} else {
			cfg.CommitTimeout = timeout
		}
	}

	if viewID := strings.TrimSpace(os.Getenv("CONSOLE_VIEW_ID")); viewID != "" {
		cfg.ViewID = viewID
	}

	if daysValue := strings.TrimSpace(os.Getenv("CONSOLE_CHART_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "CONSOLE_CHART_DAYS")
		} else {
			cfg.ChartDays = days
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
