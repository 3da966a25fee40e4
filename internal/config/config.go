package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings. Defaults are overridden first by the
// optional YAML file named in POS_CONFIG (or ./pos.yaml), then by env vars.
type Config struct {
	Port      string
	JWTSecret string

	TaxRate           float64 `yaml:"tax_rate"`
	ServiceChargeRate float64 `yaml:"service_charge_rate"`
	KDSDelayMinutes   int     `yaml:"kds_delay_minutes"`

	InsightsEndpoint string `yaml:"insights_endpoint"`
	InsightsModel    string `yaml:"insights_model"`
	InsightsAPIKey   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              "8081",
		JWTSecret:         "dev-secret-change-in-production",
		TaxRate:           0.10,
		ServiceChargeRate: 0.05,
		KDSDelayMinutes:   10,
		InsightsEndpoint:  "https://generativelanguage.googleapis.com",
		InsightsModel:     "gemini-3-flash-preview",
	}

	path := getEnv("POS_CONFIG", "pos.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.InsightsAPIKey = getEnv("API_KEY", cfg.InsightsAPIKey)
	if v := os.Getenv("TAX_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
		}
		cfg.TaxRate = f
	}
	if v := os.Getenv("SERVICE_CHARGE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVICE_CHARGE_RATE: %w", err)
		}
		cfg.ServiceChargeRate = f
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
