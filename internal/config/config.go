// Package config loads the bridge daemon configuration from YAML, with
// environment overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// DatabaseConfig selects the persistence backend. Driver is "postgres" or
// "memory".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// BridgeConfig seeds the bridge state on first start.
type BridgeConfig struct {
	Owner              string        `yaml:"owner"`
	Treasury           string        `yaml:"treasury"`
	Custody            string        `yaml:"custody"`
	ValidatorThreshold uint64        `yaml:"validator_threshold"`
	ChallengePeriod    uint64        `yaml:"challenge_period"`
	MinLockAmount      uint64        `yaml:"min_lock_amount"`
	BridgeFeeBPS       uint64        `yaml:"bridge_fee_bps"`
	BlockInterval      time.Duration `yaml:"block_interval"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig controls logger initialisation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePrefix string `yaml:"file_prefix"`
}

// AuthConfig controls request authentication.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8090",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
		Database: DatabaseConfig{Driver: "memory"},
		Bridge: BridgeConfig{
			Owner:              "owner",
			Treasury:           "treasury",
			Custody:            "custody",
			ValidatorThreshold: 2,
			ChallengePeriod:    100,
			MinLockAmount:      1,
			BridgeFeeBPS:       30,
			BlockInterval:      time.Second,
			SweepInterval:      15 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
	}
}

// Load reads configuration from path on top of the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BRIDGE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("BRIDGE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("BRIDGE_LISTEN_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Bridge.Owner == "" {
		return fmt.Errorf("bridge.owner is required")
	}
	if c.Bridge.Treasury == "" || c.Bridge.Custody == "" {
		return fmt.Errorf("bridge.treasury and bridge.custody are required")
	}
	if c.Bridge.ChallengePeriod == 0 {
		return fmt.Errorf("bridge.challenge_period must be positive")
	}
	return nil
}
