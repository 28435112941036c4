package streamfilter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextPassesThroughUnchanged(t *testing.T) {
	var out strings.Builder
	f := New(func(s string) { out.WriteString(s) }, nil)

	chunks := []string{"Hello, ", "world", "!"}
	for _, c := range chunks {
		f.Write(c)
	}
	f.Flush()

	assert.Equal(t, "Hello, world!", out.String())
}

func TestSuppressesToolsContainerAndFiresOnToolParsed(t *testing.T) {
	var out strings.Builder
	var events []ToolParsedEvent
	f := New(
		func(s string) { out.WriteString(s) },
		func(ev ToolParsedEvent) { events = append(events, ev) },
	)

	input := `Let me do that. <tools><tool>Echo("one")</tool><tool>Echo("two")</tool></tools> done.`
	for i := 0; i < len(input); i++ {
		f.Write(string(input[i]))
	}
	f.Flush()

	assert.Equal(t, "Let me do that.  done.", out.String())
	assert.Len(t, events, 2)
	assert.Equal(t, "Echo", events[0].Name)
	assert.Equal(t, "one", events[0].Preview)
	assert.Equal(t, "Echo", events[1].Name)
	assert.Equal(t, "two", events[1].Preview)
}

func TestHiddenToolsCloserQuirk(t *testing.T) {
	var out strings.Builder
	f := New(func(s string) { out.WriteString(s) }, nil)

	// A model that emits a bare "<tools>" as its closer instead of "</tools>".
	input := `<tools><tool>Echo("x")</tool><tools>after`
	f.Write(input)
	f.Flush()

	assert.Equal(t, "after", out.String())
}

func TestFlushEmitsPendingBufferedText(t *testing.T) {
	var out strings.Builder
	f := New(func(s string) { out.WriteString(s) }, nil)

	f.Write("trailing <too")
	f.Flush()

	assert.Equal(t, "trailing <too", out.String())
}
