package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Auth    AuthConfig    `yaml:"auth" envconfig:"AUTH"`
	Cache   CacheConfig   `yaml:"cache" envconfig:"CACHE"`
	Goals   GoalsConfig   `yaml:"goals" envconfig:"GOALS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	CatalogFile string `yaml:"catalog_file" envconfig:"CATALOG_FILE"`
}

// AuthConfig holds the shared-key gate protecting the API.
type AuthConfig struct {
	APIKey string `yaml:"api_key" envconfig:"API_KEY" validate:"required"`
}

// CacheConfig controls the aggregate cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gt=0"`
}

// GoalsConfig carries the fixed goal and valuation constants. Two-tier
// goals: the premium entity gets the higher target, everyone else the
// standard one.
type GoalsConfig struct {
	UnitValue           float64 `yaml:"unit_value" envconfig:"UNIT_VALUE" validate:"gt=0"`
	WeeklyGoal          float64 `yaml:"weekly_goal" envconfig:"WEEKLY_GOAL" validate:"gt=0"`
	WeeklyGoalPremium   float64 `yaml:"weekly_goal_premium" envconfig:"WEEKLY_GOAL_PREMIUM" validate:"gt=0"`
	MonthlyGoal         float64 `yaml:"monthly_goal" envconfig:"MONTHLY_GOAL" validate:"gt=0"`
	MonthlyGoalPremium  float64 `yaml:"monthly_goal_premium" envconfig:"MONTHLY_GOAL_PREMIUM" validate:"gt=0"`
	PremiumEntity       string  `yaml:"premium_entity" envconfig:"PREMIUM_ENTITY"`
	TeamMonthlyGoal     float64 `yaml:"team_monthly_goal" envconfig:"TEAM_MONTHLY_GOAL" validate:"gt=0"`
	ExcludedFromAverage string  `yaml:"excluded_from_average" envconfig:"EXCLUDED_FROM_AVERAGE"`
}

// Load loads configuration in layers: built-in defaults, then a YAML
// config file when present, then environment variables. Later layers
// win.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("PONTOS", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg. Keys absent from the
// file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	return nil
}

// findConfigFile returns the first config file found in the common
// locations, or "" when the configuration comes from env vars only.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration used by tests and by
// deployments that configure nothing.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
		},
		Auth: AuthConfig{
			APIKey: "pontos2024",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Goals: DefaultGoals(),
	}
}

// DefaultGoals returns the fixed goal constants.
func DefaultGoals() GoalsConfig {
	return GoalsConfig{
		UnitValue:           25,
		WeeklyGoal:          40,
		WeeklyGoalPremium:   60,
		MonthlyGoal:         160,
		MonthlyGoalPremium:  240,
		PremiumEntity:       "Ana",
		TeamMonthlyGoal:     800,
		ExcludedFromAverage: "Marcelo",
	}
}

// WeeklyGoalFor returns the weekly goal for an entity (two-tier).
func (g GoalsConfig) WeeklyGoalFor(entity string) float64 {
	if entity == g.PremiumEntity {
		return g.WeeklyGoalPremium
	}
	return g.WeeklyGoal
}

// MonthlyGoalFor returns the monthly goal for an entity (two-tier).
func (g GoalsConfig) MonthlyGoalFor(entity string) float64 {
	if entity == g.PremiumEntity {
		return g.MonthlyGoalPremium
	}
	return g.MonthlyGoal
}
