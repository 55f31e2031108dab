// Package config loads and validates the deckforge configuration from
// YAML with environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the deckforge service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Client    ClientConfig    `yaml:"client"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP listener and artifact output.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	OutputDir string `yaml:"output_dir"`
	// EventDBPath is the SQLite database used to persist run events.
	// ":memory:" keeps events for the process lifetime only.
	EventDBPath string `yaml:"event_db_path"`
}

// LLMConfig describes the OpenAI-compatible generation endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv    string        `yaml:"api_key_env"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// PipelineConfig tunes orchestrator behavior.
type PipelineConfig struct {
	// StageTimeout bounds each stage's external call.
	StageTimeout time.Duration `yaml:"stage_timeout"`
	// EventBuffer is the per-subscriber event buffer size. A subscriber
	// that falls this far behind is disconnected.
	EventBuffer int `yaml:"event_buffer"`
	// HeartbeatInterval is the idle keep-alive period on the SSE channel.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// ClientConfig tunes the stream-consuming client.
type ClientConfig struct {
	// RunTimeout is the hard ceiling on one end-to-end generation.
	RunTimeout time.Duration `yaml:"run_timeout"`
	// StallWindow triggers a non-fatal "waiting" warning when no frame
	// arrives within it.
	StallWindow time.Duration `yaml:"stall_window"`
}

// RetentionConfig controls the artifact janitor.
type RetentionConfig struct {
	Enabled       bool          `yaml:"enabled"`
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Default returns a configuration populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			OutputDir:   "./output",
			EventDBPath: "./deckforge-events.db",
		},
		LLM: LLMConfig{
			BaseURL:      "https://api.moonshot.cn/v1",
			Model:        "kimi-k2-thinking-turbo",
			APIKeyEnv:    "MOONSHOT_API_KEY",
			Timeout:      60 * time.Second,
			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		Pipeline: PipelineConfig{
			StageTimeout:      90 * time.Second,
			EventBuffer:       32,
			HeartbeatInterval: 15 * time.Second,
		},
		Client: ClientConfig{
			RunTimeout:  10 * time.Minute,
			StallWindow: 30 * time.Second,
		},
		Retention: RetentionConfig{
			Enabled:       true,
			MaxAge:        24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
// A missing file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// APIKey resolves the LLM API key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

// Validate checks invariants that would otherwise surface at run time.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.OutputDir == "" {
		return fmt.Errorf("server.output_dir must not be empty")
	}
	if c.Pipeline.StageTimeout <= 0 {
		return fmt.Errorf("pipeline.stage_timeout must be positive")
	}
	if c.Pipeline.EventBuffer <= 0 {
		return fmt.Errorf("pipeline.event_buffer must be positive")
	}
	if c.Client.RunTimeout <= c.Client.StallWindow {
		return fmt.Errorf("client.run_timeout must exceed client.stall_window")
	}
	if c.Retention.Enabled && c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("retention.sweep_interval must be positive when retention is enabled")
	}
	return nil
}
