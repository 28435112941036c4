package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianrumac/gloop/internal/conversation"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestSaveAndLoadRebootSessionRoundTrips(t *testing.T) {
	chdirTemp(t)

	history := []conversation.Message{{Role: conversation.RoleUser, Content: "hi"}}
	require.NoError(t, SaveRebootSession(history, "picked up new code", time.Now()))

	rf, ok, err := LoadAndDeleteRebootSession()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, history, rf.History)
	assert.Equal(t, "picked up new code", rf.Reason)

	_, ok, err = LoadAndDeleteRebootSession()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadAndDeleteRebootSessionMissingIsNotError(t *testing.T) {
	chdirTemp(t)

	_, ok, err := LoadAndDeleteRebootSession()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResumeMessageFormat(t *testing.T) {
	msg := ResumeMessage("picked up new code")
	assert.Contains(t, msg, "picked up new code")
	assert.Contains(t, msg, "Rebooted successfully")
}

func TestSaveAndListSessions(t *testing.T) {
	chdirTemp(t)

	id := NewID()
	require.NoError(t, Save(File{ID: id, History: nil, CreatedAt: time.Now(), UpdatedAt: time.Now()}))

	ids, err := ListSessions()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}
