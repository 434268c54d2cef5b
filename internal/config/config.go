package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all gridstash configuration
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
}

// GridConfig holds container dimensions
type GridConfig struct {
	ID     string `yaml:"id"` // empty means a fresh uuid per run
	Owner  string `yaml:"owner"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// CatalogConfig points at item type assets
type CatalogConfig struct {
	Path string `yaml:"path"` // a YAML file or a directory of *.yaml files
}

// StoreConfig selects where snapshots are kept
type StoreConfig struct {
	Backend   string        `yaml:"backend"` // memory | redis
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
	Redis     RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Grid.Width == 0 {
		cfg.Grid.Width = 10
	}
	if cfg.Grid.Height == 0 {
		cfg.Grid.Height = 6
	}
	if cfg.Grid.Owner == "" {
		cfg.Grid.Owner = "local"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./configs/items"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "gridstash:"
	}
	if cfg.Store.Redis.Address == "" {
		cfg.Store.Redis.Address = "localhost:6379"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate rejects settings no component can work with
func (cfg *Config) Validate() error {
	if cfg.Grid.Width < 1 || cfg.Grid.Height < 1 {
		return fmt.Errorf("grid dimensions must be positive: %dx%d", cfg.Grid.Width, cfg.Grid.Height)
	}
	switch cfg.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.TTL < 0 {
		return errors.New("store ttl cannot be negative")
	}
	return nil
}
