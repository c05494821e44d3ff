package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var ErrInvalidConfig = errors.New("invalid config")

type LoggerConfig struct {
	Mode     string // development | production
	Filename string // пусто = только stdout
}

// AppConfig is everything the store process can be tuned with.
type AppConfig struct {
	FoodMarkup          decimal.Decimal
	NonFoodMarkup       decimal.Decimal
	ExpiryThresholdDays int
	DiscountPercent     decimal.Decimal

	ReceiptDir string
	Location   string
	Daemon     bool
	ReportAt   string

	Logger LoggerConfig
}

// Default returns the configuration the store ships with.
func Default() *AppConfig {
	return &AppConfig{
		FoodMarkup:          decimal.NewFromInt(20),
		NonFoodMarkup:       decimal.NewFromInt(30),
		ExpiryThresholdDays: 5,
		DiscountPercent:     decimal.NewFromInt(10),
		ReceiptDir:          ".",
		Location:            "Europe/Sofia",
		ReportAt:            "23:55",
		Logger:              LoggerConfig{Mode: "development"},
	}
}

// Load reads the given env files (".env" when none are given; missing files are
// fine) and then applies STORE_* variables from the environment on top of Default.
func Load(files ...string) (*AppConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*AppConfig, error) {
	cfg := Default()
	var err error

	if cfg.FoodMarkup, err = percentVar(lookup, "STORE_FOOD_MARKUP", cfg.FoodMarkup); err != nil {
		return nil, err
	}
	if cfg.NonFoodMarkup, err = percentVar(lookup, "STORE_NON_FOOD_MARKUP", cfg.NonFoodMarkup); err != nil {
		return nil, err
	}
	if cfg.DiscountPercent, err = percentVar(lookup, "STORE_DISCOUNT_PERCENT", cfg.DiscountPercent); err != nil {
		return nil, err
	}
	if cfg.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, errors.Wrapf(ErrInvalidConfig, "STORE_DISCOUNT_PERCENT=%s is over 100", cfg.DiscountPercent)
	}
	if v, ok := lookup("STORE_EXPIRY_THRESHOLD_DAYS"); ok {
		days, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil || days < 0 {
			return nil, errors.Wrapf(ErrInvalidConfig, "STORE_EXPIRY_THRESHOLD_DAYS=%q", v)
		}
		cfg.ExpiryThresholdDays = days
	}
	if v, ok := lookup("STORE_DAEMON"); ok {
		if cfg.Daemon, err = cast.ToBoolE(strings.TrimSpace(v)); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "STORE_DAEMON=%q", v)
		}
	}

	cfg.ReceiptDir = stringVar(lookup, "STORE_RECEIPT_DIR", cfg.ReceiptDir)
	cfg.Location = stringVar(lookup, "STORE_TIMEZONE", cfg.Location)
	cfg.ReportAt = stringVar(lookup, "STORE_REPORT_AT", cfg.ReportAt)
	cfg.Logger.Mode = stringVar(lookup, "STORE_LOG_MODE", cfg.Logger.Mode)
	cfg.Logger.Filename = stringVar(lookup, "STORE_LOG_FILE", cfg.Logger.Filename)

	if cfg.Logger.Mode != "development" && cfg.Logger.Mode != "production" {
		return nil, errors.Wrapf(ErrInvalidConfig, "STORE_LOG_MODE=%q", cfg.Logger.Mode)
	}
	return cfg, nil
}

func stringVar(lookup func(string) (string, bool), key, def string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func percentVar(lookup func(string) (string, bool), key string, def decimal.Decimal) (decimal.Decimal, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalidConfig, "%s=%q", key, v)
	}
	return d, nil
}
