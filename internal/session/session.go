// Package session implements checkpoint persistence and the reboot
// protocol: serializing conversation history to disk and restoring it
// across a self-restart.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ianrumac/gloop/internal/conversation"
)

const rebootPath = ".gloop/reboot_session.json"

// RebootExitCode is the distinguished exit code a supervising launcher
// watches for to decide whether to respawn the process.
const RebootExitCode = 75

// ResumeMessage returns the synthetic first user input a rebooted process
// sends itself after restoring history.
func ResumeMessage(reason string) string {
	return fmt.Sprintf("[System: Rebooted successfully. Reason: %s. Fresh code is now loaded. Continue where you left off.]", reason)
}

// RebootFile is the on-disk shape persisted by SaveRebootSession.
type RebootFile struct {
	History   []conversation.Message `json:"history"`
	Reason    string                 `json:"reason"`
	Timestamp time.Time              `json:"timestamp"`
}

// SaveRebootSession writes the reboot file. It does not exit the process —
// callers are expected to os.Exit(RebootExitCode) after a successful save.
func SaveRebootSession(history []conversation.Message, reason string, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(rebootPath), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(RebootFile{History: history, Reason: reason, Timestamp: now}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reboot session: %w", err)
	}
	tmp := rebootPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write reboot session: %w", err)
	}
	return os.Rename(tmp, rebootPath)
}

// LoadAndDeleteRebootSession reads and removes the reboot file, if
// present. ok is false when there is no pending reboot to resume.
func LoadAndDeleteRebootSession() (RebootFile, bool, error) {
	data, err := os.ReadFile(rebootPath)
	if os.IsNotExist(err) {
		return RebootFile{}, false, nil
	}
	if err != nil {
		return RebootFile{}, false, err
	}
	var rf RebootFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return RebootFile{}, false, fmt.Errorf("decode reboot session: %w", err)
	}
	if err := os.Remove(rebootPath); err != nil {
		return RebootFile{}, false, err
	}
	return rf, true, nil
}

// File is a named checkpoint of a conversation, independent of the reboot
// mechanism — used for an eventual session-listing surface.
type File struct {
	ID        uuid.UUID               `json:"id"`
	History   []conversation.Message  `json:"history"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

const sessionsDir = ".gloop/sessions"

func ensureSessionsDir() error {
	return os.MkdirAll(sessionsDir, 0o755)
}

// Save atomically writes a session checkpoint and records it in the
// SQLite session index (internal/session/store.go) so ListSessions can
// answer without a directory scan, the same split sacenox-symb's
// internal/store package draws between a durable message/session store
// and the in-memory conversation it backs.
func Save(f File) error {
	if err := ensureSessionsDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(sessionsDir, f.ID.String()+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	return recordIndex(f.ID.String(), f.CreatedAt, f.UpdatedAt)
}

// NewID allocates a fresh session identifier.
func NewID() uuid.UUID { return uuid.New() }

// ListSessions returns every persisted checkpoint's ID, oldest first, per
// the SQLite index.
func ListSessions() ([]uuid.UUID, error) {
	raw, err := indexedIDs()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
