// Package config loads server settings from the environment (and an optional
// .env file). Command-line flags in cmd/server override these values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/shift-payroll/payroll"
)

type Config struct {
	Port           int
	DBPath         string // empty = in-memory store
	AdminPassword  string
	AdminHash      string // bcrypt; wins over AdminPassword when set
	LogLevel       string
	LogFormat      string // "json" or "text"
	DailyRate      decimal.Decimal
	StreakLength   int
	AllowedOrigins []string
	Seed           bool
}

func Default() Config {
	rules := payroll.DefaultPayRules()
	return Config{
		Port:           8080,
		AdminPassword:  "admin",
		LogLevel:       "info",
		LogFormat:      "text",
		DailyRate:      rules.DailyRate,
		StreakLength:   rules.StreakLength,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		Seed:           true,
	}
}

// Load reads .env (if present) and PAYROLL_* variables on top of Default().
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("PAYROLL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PAYROLL_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := os.LookupEnv("PAYROLL_DB"); ok {
		cfg.DBPath = v
	}
	if v := os.Getenv("PAYROLL_ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("PAYROLL_ADMIN_PASSWORD_HASH"); v != "" {
		cfg.AdminHash = v
	}
	if v := os.Getenv("PAYROLL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PAYROLL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PAYROLL_DAILY_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, fmt.Errorf("PAYROLL_DAILY_RATE: %w", err)
		}
		cfg.DailyRate = rate
	}
	if v := os.Getenv("PAYROLL_STREAK_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("PAYROLL_STREAK_LENGTH: must be a positive integer, got %q", v)
		}
		cfg.StreakLength = n
	}
	if v := os.Getenv("PAYROLL_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("PAYROLL_SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("PAYROLL_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

func (c Config) PayRules() payroll.PayRules {
	return payroll.PayRules{DailyRate: c.DailyRate, StreakLength: c.StreakLength}
}

// AccessGate builds the edit-mode gate from AdminHash or AdminPassword.
func (c Config) AccessGate() (*payroll.AccessGate, error) {
	if c.AdminHash != "" {
		return payroll.NewAccessGateFromHash(c.AdminHash)
	}
	return payroll.NewAccessGate(c.AdminPassword), nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log format: unknown %q", c.LogFormat)
	}
	return logger, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
