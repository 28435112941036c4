package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDangerousBashCommandMatchesRm(t *testing.T) {
	_, dangerous := DangerousBashCommand("rm -rf /tmp/foo")
	assert.True(t, dangerous)

	_, dangerous = DangerousBashCommand("echo hello")
	assert.False(t, dangerous)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	restore := workingDir
	workingDir = dir
	defer func() { workingDir = restore }()

	write := writeDefinition()
	_, err := write.Execute(Args{"path": "notes/a.txt", "content": "hello"})
	require.NoError(t, err)

	read := readDefinition()
	out, err := read.Execute(Args{"path": "notes/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestSafePathRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	restore := workingDir
	workingDir = dir
	defer func() { workingDir = restore }()

	_, err := safePath("../../etc/passwd")
	assert.Error(t, err)
}

func TestEditReplacesFirstOccurrence(t *testing.T) {
	dir := t.TempDir()
	restore := workingDir
	workingDir = dir
	defer func() { workingDir = restore }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("foo bar foo"), 0o644))

	edit := editDefinition()
	_, err := edit.Execute(Args{"path": "a.txt", "old": "foo", "new": "baz"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "baz bar foo", string(data))
}

func TestEditReturnsErrorWhenOldTextMissing(t *testing.T) {
	dir := t.TempDir()
	restore := workingDir
	workingDir = dir
	defer func() { workingDir = restore }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("content"), 0o644))

	edit := editDefinition()
	_, err := edit.Execute(Args{"path": "a.txt", "old": "missing", "new": "x"})
	assert.Error(t, err)
}

func TestRegistryInstallAndLookup(t *testing.T) {
	r := NewRegistry(bashDefinition())
	_, ok := r.Lookup("Write")
	assert.False(t, ok)

	r.Install(writeDefinition())
	def, ok := r.Lookup("Write")
	require.True(t, ok)
	assert.Equal(t, "Write", def.Name)

	_, ok = r.Lookup("Bash")
	assert.True(t, ok)
}

func TestZipArgsPairsPositionally(t *testing.T) {
	args := ZipArgs([]Argument{{Name: "a"}, {Name: "b"}}, []string{"1", "2", "3"})
	assert.Equal(t, Args{"a": "1", "b": "2"}, args)
}
