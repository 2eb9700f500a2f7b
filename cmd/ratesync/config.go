package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"service-exchangerates/internal"
	"service-exchangerates/pkg/exchangerates"
)

type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string
	LogJSON     bool

	Credentials exchangerates.Credentials
	Timeout     time.Duration

	BaseCCY internal.CurrencyCode
	Symbols []internal.CurrencyCode

	CronSpec string
	Location string
}

func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort: "8080",
		LogLevel: "info",
		Timeout:  20 * time.Second,
		BaseCCY:  internal.EUR,
		Symbols:  []internal.CurrencyCode{internal.USD, internal.GBP, internal.JPY},
		CronSpec: "0 17 * * *",
		Location: "Europe/Berlin",
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is empty")
	}

	cfg.Credentials = exchangerates.CredentialsFromEnv("", "")
	if cfg.Credentials.APIKey == "" {
		return Config{}, fmt.Errorf("%s is empty", exchangerates.EnvAPIKey)
	}

	if v := strings.TrimSpace(os.Getenv("RATES_BASE")); v != "" {
		base, err := internal.NewCurrencyCode(v)
		if err != nil {
			return Config{}, fmt.Errorf("RATES_BASE: %w", err)
		}
		cfg.BaseCCY = base
	}
	if v := strings.TrimSpace(os.Getenv("RATES_SYMBOLS")); v != "" {
		symbols, err := internal.ParseCurrencyCodes(v)
		if err != nil {
			return Config{}, fmt.Errorf("RATES_SYMBOLS: %w", err)
		}
		cfg.Symbols = symbols
	}
	if v := strings.TrimSpace(os.Getenv("RATES_CRON")); v != "" {
		cfg.CronSpec = v
	}
	if v := strings.TrimSpace(os.Getenv("RATES_TIMEZONE")); v != "" {
		cfg.Location = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.HTTPPort = p
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogJSON = os.Getenv("LOG_JSON") == "true"

	return cfg, nil
}
