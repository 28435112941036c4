package subagent

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTaskSuffixAppendsOnce(t *testing.T) {
	suffixed := WithTaskSuffix("write a haiku")
	assert.Contains(t, suffixed, "write a haiku")
	assert.Contains(t, suffixed, TaskSuffix)

	idempotent := WithTaskSuffix(suffixed)
	assert.Equal(t, suffixed, idempotent)
}

func TestReadCompleteEventExtractsLastCompleteLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	content := `{"ts":"t1","type":"start","task":"x"}
{"ts":"t2","type":"tool_start","name":"Echo"}
{"ts":"t3","type":"complete","summary":"all done","usage":{"tokens":42}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	summary, usage, ok := readCompleteEvent(path)
	require.True(t, ok)
	assert.Equal(t, "all done", summary)
	assert.Contains(t, usage, "42")
}

func TestReadCompleteEventMissingFile(t *testing.T) {
	_, _, ok := readCompleteEvent(filepath.Join(t.TempDir(), "nope.ndjson"))
	assert.False(t, ok)
}

func TestAsExitError(t *testing.T) {
	code, isExit := asExitError(nil)
	assert.False(t, isExit)
	assert.Equal(t, 0, code)

	err := exec.Command("/bin/sh", "-c", "exit 3").Run()
	code, isExit = asExitError(err)
	assert.True(t, isExit)
	assert.Equal(t, 3, code)
}
