package effects

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianrumac/gloop/internal/memory"
	"github.com/ianrumac/gloop/internal/tools"
)

func TestBuildSystemPromptListsToolsAndMemory(t *testing.T) {
	registry := tools.NewRegistry(tools.Definition{
		Name:        "Echo",
		Description: "echoes its input",
		Arguments:   []tools.Argument{{Name: "text"}},
	})
	mem := memory.NewStore(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, mem.Remember("buy milk"))

	prompt := BuildSystemPrompt(registry, mem)

	assert.Contains(t, prompt, "Echo(text): echoes its input")
	assert.Contains(t, prompt, "Remembered notes:")
	assert.Contains(t, prompt, "buy milk")
}

func TestBuildSystemPromptOmitsMemorySectionWhenEmpty(t *testing.T) {
	registry := tools.NewRegistry()
	mem := memory.NewStore(filepath.Join(t.TempDir(), "memory.txt"))

	prompt := BuildSystemPrompt(registry, mem)

	assert.NotContains(t, prompt, "Remembered notes:")
}
