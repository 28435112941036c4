package memory

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberThenEntries(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, s.Remember("buy milk"))
	require.NoError(t, s.Remember("call dentist"))

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"buy milk", "call dentist"}, entries)
}

func TestEntriesOnMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.txt"))
	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestForgetRemovesExactMatch(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memory.txt"))
	require.NoError(t, s.Remember("buy milk"))
	require.NoError(t, s.Remember("call dentist"))
	require.NoError(t, s.Forget("buy milk"))

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"call dentist"}, entries)
}

func TestCompactMemoryEntrySingleLines(t *testing.T) {
	assert.Equal(t, "a b c", compactMemoryEntry("a\nb  c"))
}

func TestCompactMemoryEntryNeverExceedsCap(t *testing.T) {
	long := strings.Repeat("x", 10000)
	compacted := compactMemoryEntry(long)
	assert.LessOrEqual(t, len(compacted), maxEntryLength)
	assert.True(t, strings.HasPrefix(compacted, "[truncated] "))
}

func TestCompactMemoryEntryNeverContainsNewline(t *testing.T) {
	inputs := []string{
		"short one",
		"with\nnewlines\nand\ttabs",
		strings.Repeat("word\n", 300),
	}
	for _, in := range inputs {
		assert.NotContains(t, compactMemoryEntry(in), "\n")
	}
}
