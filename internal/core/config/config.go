package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Social   SocialConfig   `koanf:"social"`
}

type ServerConfig struct {
	Port          int      `koanf:"port"`
	Host          string   `koanf:"host"`
	MaxBodySizeMB int      `koanf:"max_body_size_mb"`
	Mode          string   `koanf:"mode"` // debug | release
	CORSOrigins   []string `koanf:"cors_origins"`
}

type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type SocialConfig struct {
	Enabled         bool   `koanf:"enabled"`
	RedisAddr       string `koanf:"redis_addr"`
	CacheTTL        string `koanf:"cache_ttl"`        // parsed and validated on startup
	RefreshInterval string `koanf:"refresh_interval"` // empty disables the background refresher
}

func (c SocialConfig) CacheTTLDuration() (time.Duration, error) {
	return time.ParseDuration(c.CacheTTL)
}

func (c SocialConfig) RefreshIntervalDuration() (time.Duration, error) {
	if c.RefreshInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.RefreshInterval)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Database.Type != "" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if c.Social.Enabled {
		if strings.TrimSpace(c.Social.RedisAddr) == "" {
			return fmt.Errorf("social.redis_addr is required when social.enabled is true")
		}
		ttl, err := c.Social.CacheTTLDuration()
		if err != nil {
			return fmt.Errorf("invalid social.cache_ttl %q: %w", c.Social.CacheTTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("social.cache_ttl must be > 0")
		}
		if _, err := c.Social.RefreshIntervalDuration(); err != nil {
			return fmt.Errorf("invalid social.refresh_interval %q: %w", c.Social.RefreshInterval, err)
		}
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             5001,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"server.cors_origins":     []string{"http://localhost:3000", "http://localhost:3001"},
		"database.type":           "postgres",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"social.enabled":          true,
		"social.redis_addr":       "localhost:6379",
		"social.cache_ttl":        "15m",
		"social.refresh_interval": "15m",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("PITCHSIDE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PITCHSIDE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
