package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianrumac/gloop/internal/form"
)

func TestParseSlashCommandTools(t *testing.T) {
	f := parseSlashCommand("/tools")
	assert.Equal(t, form.ListTools(), f)
}

func TestParseSlashCommandInstall(t *testing.T) {
	f := parseSlashCommand("/install github.com/example/tool")
	require.Equal(t, form.TagInstall, f.Tag)
	assert.Equal(t, "github.com/example/tool", f.Source)
}

func TestParseSlashCommandUnknown(t *testing.T) {
	f := parseSlashCommand("/bogus")
	require.Equal(t, form.TagEmit, f.Tag)
	assert.Equal(t, "Unknown command: /bogus", f.Content)
}

func TestParseSlashCommandPlainTextBecomesThink(t *testing.T) {
	f := parseSlashCommand("hello there")
	assert.Equal(t, form.Think("hello there"), f)
}
