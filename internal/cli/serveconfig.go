package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServeConfig is the optional YAML configuration file for `replyflow serve`.
// Flags explicitly set on the command line override file values.
type ServeConfig struct {
	Port         string        `yaml:"port"`
	Backend      string        `yaml:"backend"`
	Redis        RedisConfig   `yaml:"redis"`
	RAGURL       string        `yaml:"rag_url"`
	RAGTimeout   time.Duration `yaml:"rag_timeout"`
	HistoryLimit int           `yaml:"history_limit"`
	Bots         []string      `yaml:"bots"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	Prefix     string        `yaml:"prefix"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// LoadServeConfig reads and validates a serve configuration file.
func LoadServeConfig(path string) (*ServeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ServeConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	switch cfg.Backend {
	case "", "memory", "redis":
	default:
		return nil, fmt.Errorf("config %s: unknown backend %q (want memory or redis)", path, cfg.Backend)
	}
	return &cfg, nil
}

// Merge resolves the effective options from the file and the flag values.
// Every setting follows the same rule: a flag explicitly set on the command
// line wins, otherwise a non-zero file value replaces the flag's default.
// changed reports whether the named flag was set explicitly
// (cobra's FlagSet.Changed).
func (c *ServeConfig) Merge(flagOpts Options, changed func(name string) bool) Options {
	opts := flagOpts
	if c.Backend != "" && !changed("backend") {
		opts.Backend = c.Backend
	}
	if c.Redis.Addr != "" && !changed("redis-addr") {
		opts.RedisAddr = c.Redis.Addr
	}
	if c.Redis.Password != "" && !changed("redis-password") {
		opts.RedisPassword = c.Redis.Password
	}
	if c.Redis.DB != 0 && !changed("redis-db") {
		opts.RedisDB = c.Redis.DB
	}
	if c.Redis.Prefix != "" && !changed("redis-prefix") {
		opts.RedisPrefix = c.Redis.Prefix
	}
	if c.Redis.SessionTTL > 0 && !changed("session-ttl") {
		opts.SessionTTL = c.Redis.SessionTTL
	}
	if c.RAGURL != "" && !changed("rag-url") {
		opts.RAGURL = c.RAGURL
	}
	if c.RAGTimeout > 0 && !changed("rag-timeout") {
		opts.RAGTimeout = c.RAGTimeout
	}
	if c.HistoryLimit > 0 && !changed("history-limit") {
		opts.HistoryLimit = c.HistoryLimit
	}
	return opts
}
