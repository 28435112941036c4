package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GLOOP_LOG_LEVEL", "")
	t.Setenv("GLOOP_MODEL", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 50, cfg.ContextPruneThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	t.Setenv("GLOOP_LOG_LEVEL", "warn")
	t.Setenv("GLOOP_MODEL", "claude-haiku")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", cfg.APIKey)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "claude-haiku", cfg.Model)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GLOOP_MODEL", "claude-haiku")
	t.Setenv("GLOOP_LOG_LEVEL", "")

	cfg, err := Load([]string{"--model", "claude-opus", "--debug", "--task", "do the thing"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus", cfg.Model)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "do the thing", cfg.TaskPrompt)
}
