package effects

import (
	"fmt"
	"strings"

	"github.com/ianrumac/gloop/internal/memory"
	"github.com/ianrumac/gloop/internal/tools"
)

// BuildSystemPrompt renders the system prompt from the current registry
// snapshot and memory notes. Called on startup and whenever Refresh fires.
func BuildSystemPrompt(registry *tools.Registry, mem *memory.Store) string {
	var b strings.Builder
	b.WriteString("You are gloop, an autonomous terminal agent. Emit tool calls inside <tools><tool>Name(args)</tool></tools> markup.\n\n")

	b.WriteString("Tools:\n")
	for _, d := range registry.All() {
		b.WriteString(fmt.Sprintf("- %s(%s): %s\n", d.Name, argNames(d.Arguments), d.Description))
	}

	entries, err := mem.Entries()
	if err == nil && len(entries) > 0 {
		b.WriteString("\nRemembered notes:\n")
		for _, e := range entries {
			b.WriteString("- " + e + "\n")
		}
	}

	return b.String()
}

func argNames(args []tools.Argument) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}
