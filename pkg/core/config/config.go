// Package config loads dashboard service configuration: a yaml file for the
// stable settings, environment variables for deployment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// RedisConfig holds the override-store connection settings. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AssumptionsConfig carries the market-standard default rates, the
// lowest-priority source the engine consults. All rates are decimal
// fractions.
type AssumptionsConfig struct {
	VacancyRate        float64 `yaml:"vacancy_rate"`
	ManagementFeeRate  float64 `yaml:"management_fee_rate"`
	ExpenseRatio       float64 `yaml:"expense_ratio"`
	InterestRate       float64 `yaml:"interest_rate"`
	LoanTermYears      float64 `yaml:"loan_term_years"`
	LoanPercentage     float64 `yaml:"loan_percentage"`
	ExitCapRate        float64 `yaml:"exit_cap_rate"`
	AppreciationFactor float64 `yaml:"appreciation_factor"`
}

// Model converts the configured defaults into the optional-field form the
// resolver merges. Zero-valued entries are treated as unset.
func (a AssumptionsConfig) Model() models.Assumptions {
	opt := func(v float64) *float64 {
		if v == 0 {
			return nil
		}
		return &v
	}
	return models.Assumptions{
		VacancyRate:        opt(a.VacancyRate),
		ManagementFeeRate:  opt(a.ManagementFeeRate),
		ExpenseRatio:       opt(a.ExpenseRatio),
		InterestRate:       opt(a.InterestRate),
		LoanTermYears:      opt(a.LoanTermYears),
		LoanPercentage:     opt(a.LoanPercentage),
		ExitCapRate:        opt(a.ExitCapRate),
		AppreciationFactor: opt(a.AppreciationFactor),
	}
}

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig        `yaml:"server"`
	DatabaseURL string              `yaml:"database_url"`
	Redis       RedisConfig         `yaml:"redis"`
	Assumptions AssumptionsConfig   `yaml:"assumptions"`
	Tolerances  validate.Tolerances `yaml:"tolerances"`
}

// Default returns the built-in configuration: the market-standard
// underwriting rates and the operational drift thresholds.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Assumptions: AssumptionsConfig{
			VacancyRate:        0.05,
			ManagementFeeRate:  0.08,
			ExpenseRatio:       0.35,
			InterestRate:       0.065,
			LoanTermYears:      30,
			LoanPercentage:     0.75,
			ExitCapRate:        0.06,
			AppreciationFactor: 1.1,
		},
		Tolerances: validate.DefaultTolerances(),
	}
}

// Load reads the yaml file at path over the defaults, then applies
// environment overrides. A missing file is not an error; the defaults and
// environment carry a bare deployment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Server.LogFormat = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
}
