package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShellCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	restore := workingDir
	workingDir = dir
	defer func() { workingDir = restore }()

	out, err := runShell("echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunShellFailsOnNonZeroExit(t *testing.T) {
	_, err := runShell("exit 3")
	assert.Error(t, err)
}

func TestRunShellBlocksBannedCommand(t *testing.T) {
	_, err := runShell("sudo rm -rf /")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command blocked")
}

func TestArgumentsBlockerMatchesFlagOnly(t *testing.T) {
	blocker := ArgumentsBlocker("npm", []string{"install"}, []string{"-g"})
	assert.True(t, blocker([]string{"npm", "install", "-g", "lodash"}))
	assert.False(t, blocker([]string{"npm", "install", "lodash"}))
}

func TestCommandsBlockerMatchesExactName(t *testing.T) {
	blocker := CommandsBlocker([]string{"sudo", "su"})
	assert.True(t, blocker([]string{"sudo", "ls"}))
	assert.False(t, blocker([]string{"ls"}))
}
