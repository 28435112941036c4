package effects

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ianrumac/gloop/internal/conversation"
	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/memory"
	"github.com/ianrumac/gloop/internal/session"
	"github.com/ianrumac/gloop/internal/subagent"
)

// Headless is the Effects implementation used when the process runs as a
// subagent (--task): no terminal interaction, all output pushed through
// the NDJSON event stream instead.
type Headless struct {
	Events   *subagent.EventWriter
	Log      zerolog.Logger
	Memory   *memory.Store
	Start    time.Time

	BuildSystemPrompt func() string
	ManageContextFn   func(instructions string) string
	SpawnFn           func(task string) form.SpawnResult
	InstallToolFn     func(source string) string

	textAcc strings.Builder
}

func (h *Headless) StreamChunk(text string) { h.textAcc.WriteString(text) }

func (h *Headless) StreamDone() {
	if h.textAcc.Len() > 0 {
		h.Events.Assistant(h.textAcc.String())
		h.textAcc.Reset()
	}
}

func (h *Headless) ToolStart(name, preview string) { h.Events.ToolStart(name, preview) }
func (h *Headless) ToolDone(name string, ok bool, output string) {
	h.Events.ToolDone(name, ok, output)
}

// Confirm always allows in headless mode — there is no terminal to prompt.
// Danger gating still logs the attempted action for audit.
func (h *Headless) Confirm(command string) bool {
	h.Log.Warn().Str("command", command).Msg("auto-confirmed dangerous action in headless mode")
	return true
}

// Ask has no user to prompt in headless mode; it returns an empty reply.
func (h *Headless) Ask(question string) string {
	h.Log.Warn().Str("question", question).Msg("AskUser has no operator in headless mode")
	return ""
}

func (h *Headless) Remember(content string) {
	h.Events.Remember(content)
	if err := h.Memory.Remember(content); err != nil {
		h.Log.Error().Err(err).Msg("remember failed")
	}
}

func (h *Headless) Forget(content string) {
	h.Events.Forget(content)
	if err := h.Memory.Forget(content); err != nil {
		h.Log.Error().Err(err).Msg("forget failed")
	}
}

func (h *Headless) RefreshSystem() {
	h.Events.RefreshSystem()
	if h.BuildSystemPrompt != nil {
		h.BuildSystemPrompt()
	}
}

func (h *Headless) Reboot(reason string, conv conversation.Conversation) {
	h.Events.Reboot(reason)
	if err := session.SaveRebootSession(conv.GetHistory(), reason, time.Now()); err != nil {
		h.Events.Error(err.Error())
		return
	}
	os.Exit(session.RebootExitCode)
}

func (h *Headless) ManageContext(instructions string) string {
	if h.ManageContextFn == nil {
		return "context management unavailable"
	}
	return h.ManageContextFn(instructions)
}

func (h *Headless) Complete(summary string) {
	h.Events.Complete(summary, map[string]any{"elapsed_seconds": time.Since(h.Start).Seconds()})
}

func (h *Headless) InstallTool(source string) string {
	if h.InstallToolFn == nil {
		return "install unavailable"
	}
	return h.InstallToolFn(source)
}

func (h *Headless) ListTools() string { return "" }

func (h *Headless) Spawn(task string) form.SpawnResult {
	if h.SpawnFn == nil {
		return form.SpawnResult{Success: false, Summary: "nested spawning unavailable"}
	}
	return h.SpawnFn(task)
}
