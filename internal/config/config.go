// Package config loads questline settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Coin policies accepted by rewards.coin_policy.
const (
	CoinPolicyWallet = "wallet"
	CoinPolicyNone   = "none"
)

// DefaultPath is the config file read when QUESTLINE_CONFIG is unset.
const DefaultPath = "questline.yaml"

// Config is the complete questline configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Redis    RedisConfig    `yaml:"redis"`
	Rewards  RewardsConfig  `yaml:"rewards"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or postgres
	Path   string `yaml:"path,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

type HTTPConfig struct {
	Addr                  string `yaml:"addr"`
	JWTSecret             string `yaml:"jwt_secret,omitempty"`
	GenerateRatePerMinute int    `yaml:"generate_rate_per_minute"`
}

type OracleConfig struct {
	Provider  string        `yaml:"provider"` // gemini or fixture
	APIKey    string        `yaml:"api_key,omitempty"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	StepCount int           `yaml:"step_count"`
}

type RedisConfig struct {
	Addr string `yaml:"addr,omitempty"` // empty disables event publishing
}

type RewardsConfig struct {
	CoinPolicy string `yaml:"coin_policy"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite3"},
		HTTP:     HTTPConfig{Addr: ":8080", GenerateRatePerMinute: 6},
		Oracle: OracleConfig{
			Provider:  "gemini",
			Model:     "gemini-pro",
			Timeout:   20 * time.Second,
			StepCount: 5,
		},
		Rewards: RewardsConfig{CoinPolicy: CoinPolicyWallet},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// ResolvePath returns the config file to read: QUESTLINE_CONFIG if set,
// otherwise DefaultPath when it exists, otherwise "".
func ResolvePath() string {
	if p := os.Getenv("QUESTLINE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// LoadDotEnv loads variables from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads path (if non-empty), overlays the environment and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML. Secrets are omitted when empty.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("QUESTLINE_DB_DRIVER", &cfg.Database.Driver)
	setString("QUESTLINE_DB_PATH", &cfg.Database.Path)
	setString("DATABASE_URL", &cfg.Database.DSN)
	setString("QUESTLINE_DB_DSN", &cfg.Database.DSN)
	setString("QUESTLINE_HTTP_ADDR", &cfg.HTTP.Addr)
	setString("QUESTLINE_JWT_SECRET", &cfg.HTTP.JWTSecret)
	setString("QUESTLINE_ORACLE_PROVIDER", &cfg.Oracle.Provider)
	setString("GEMINI_API_KEY", &cfg.Oracle.APIKey)
	setString("QUESTLINE_ORACLE_MODEL", &cfg.Oracle.Model)
	setString("QUESTLINE_ORACLE_BASE_URL", &cfg.Oracle.BaseURL)
	setString("QUESTLINE_REDIS_ADDR", &cfg.Redis.Addr)
	setString("QUESTLINE_COIN_POLICY", &cfg.Rewards.CoinPolicy)
	setString("QUESTLINE_LOG_LEVEL", &cfg.Log.Level)
	setString("QUESTLINE_LOG_FORMAT", &cfg.Log.Format)

	if v, ok := os.LookupEnv("QUESTLINE_GENERATE_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUESTLINE_GENERATE_RATE %q: %w", v, err)
		}
		cfg.HTTP.GenerateRatePerMinute = n
	}
	if v, ok := os.LookupEnv("QUESTLINE_ORACLE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid QUESTLINE_ORACLE_TIMEOUT %q: %w", v, err)
		}
		cfg.Oracle.Timeout = d
	}
	if v, ok := os.LookupEnv("QUESTLINE_ORACLE_STEP_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUESTLINE_ORACLE_STEP_COUNT %q: %w", v, err)
		}
		cfg.Oracle.StepCount = n
	}
	return nil
}

// Validate rejects unknown enum values and impossible settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite3 or postgres, got %q", c.Database.Driver)
	}

	switch c.Oracle.Provider {
	case "gemini", "fixture":
	default:
		return fmt.Errorf("oracle.provider must be gemini or fixture, got %q", c.Oracle.Provider)
	}
	if c.Oracle.Timeout <= 0 {
		return errors.New("oracle.timeout must be positive")
	}
	if c.Oracle.StepCount < 1 {
		return errors.New("oracle.step_count must be at least 1")
	}

	switch c.Rewards.CoinPolicy {
	case CoinPolicyWallet, CoinPolicyNone:
	default:
		return fmt.Errorf("rewards.coin_policy must be wallet or none, got %q", c.Rewards.CoinPolicy)
	}

	if c.HTTP.GenerateRatePerMinute < 0 {
		return errors.New("http.generate_rate_per_minute must not be negative")
	}
	return nil
}

// CreditCoins reports whether completed nodes credit the wallet.
func (c *Config) CreditCoins() bool {
	return c.Rewards.CoinPolicy == CoinPolicyWallet
}
