package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Browser   BrowserConfig   `yaml:"browser"`
	Sources   SourcesConfig   `yaml:"sources"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type TransportConfig struct {
	Retries     int               `yaml:"retries"`
	MinInterval time.Duration     `yaml:"min_interval"`
	Timeout     time.Duration     `yaml:"timeout"`
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`
}

type BrowserConfig struct {
	Headless bool          `yaml:"headless"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SourcesConfig struct {
	// Enabled lists the resolvers to run; empty means all registered ones.
	Enabled []string `yaml:"enabled"`

	Transfermarkt TransfermarktConfig `yaml:"transfermarkt"`
}

type TransfermarktConfig struct {
	// Domain picks the Transfermarkt country mirror, e.g. "transfermarkt.com"
	// or "transfermarkt.de". Endpoints differ slightly per mirror.
	Domain string `yaml:"domain"`
}

type PipelineConfig struct {
	// FixtureConcurrency bounds the per-fixture source fan-out.
	FixtureConcurrency int `yaml:"fixture_concurrency"`
	// FlushEvery persists cache and report snapshot after this many players.
	FlushEvery int `yaml:"flush_every"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Retries:     3,
			MinInterval: 1 * time.Second,
			Timeout:     30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  60 * time.Second,
		},
		Sources: SourcesConfig{
			Transfermarkt: TransfermarktConfig{Domain: "transfermarkt.com"},
		},
		Pipeline: PipelineConfig{
			FixtureConcurrency: 5,
			FlushEvery:         1,
		},
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// file is not an error; the defaults are complete.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Sources.Transfermarkt.Domain == "" {
		cfg.Sources.Transfermarkt.Domain = "transfermarkt.com"
	}
	if cfg.Pipeline.FixtureConcurrency <= 0 {
		cfg.Pipeline.FixtureConcurrency = 5
	}
	if cfg.Pipeline.FlushEvery <= 0 {
		cfg.Pipeline.FlushEvery = 1
	}
	return cfg, nil
}
