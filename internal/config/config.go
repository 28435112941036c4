// Package config loads layered configuration: compiled-in defaults, a TOML
// config file, .env/environment variables, then CLI flags, each layer
// overriding the last.
package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the agent's fully resolved runtime configuration.
type Config struct {
	Provider              string `toml:"provider"`
	Model                 string `toml:"model"`
	MaxTokens             int    `toml:"max_tokens"`
	ContextPruneThreshold int    `toml:"context_prune_threshold"`
	LogLevel              string `toml:"log_level"`
	APIKey                string `toml:"-"`
	Debug                 bool   `toml:"-"`
	TaskPrompt            string `toml:"-"`
	EventsFile            string `toml:"-"`
}

func defaults() Config {
	return Config{
		Provider:              "anthropic",
		Model:                 "claude-sonnet-4-5",
		MaxTokens:             8192,
		ContextPruneThreshold: 50,
		LogLevel:              "info",
	}
}

// configPath returns the TOML config path, preferring XDG_CONFIG_HOME.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gloop", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gloop", "config.toml")
}

// Load resolves configuration from defaults, the TOML config file, .env +
// environment, then the given CLI args, in ascending precedence.
func Load(args []string) (Config, error) {
	cfg := defaults()

	if path := configPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, err
			}
		}
	}

	_ = godotenv.Load() // missing .env is not an error

	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("GLOOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GLOOP_MODEL"); v != "" {
		cfg.Model = v
	}

	fs := flag.NewFlagSet("gloop", flag.ContinueOnError)
	model := fs.String("model", cfg.Model, "model identifier")
	provider := fs.String("provider", cfg.Provider, "provider name")
	debug := fs.Bool("debug", cfg.Debug, "enable debug logging")
	task := fs.String("task", "", "run headless with this task, then exit")
	eventsFile := fs.String("events-file", "", "NDJSON event output path for headless runs")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Model = *model
	cfg.Provider = *provider
	cfg.Debug = *debug
	cfg.TaskPrompt = *task
	cfg.EventsFile = *eventsFile
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
