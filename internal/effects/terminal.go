// Package effects implements the interpreter's Effects surface for the
// interactive terminal CLI.
package effects

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/ianrumac/gloop/internal/conversation"
	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/memory"
	"github.com/ianrumac/gloop/internal/session"
	"github.com/ianrumac/gloop/internal/tools"
)

// Terminal is the interactive Effects implementation: it prints to stdout,
// reads confirmations/answers from stdin, persists memory notes to disk,
// and delegates context-pruning and subagent spawns to injected functions
// (ManageContextFn, SpawnFn), which cmd/gloop wires to internal/contextprune
// and internal/subagent.
type Terminal struct {
	Out      io.Writer
	In       *bufio.Scanner
	Log      zerolog.Logger
	Memory   *memory.Store
	Registry *tools.Registry

	BuildSystemPrompt func() string
	ManageContextFn   func(instructions string) string
	SpawnFn           func(task string) form.SpawnResult
	InstallToolFn     func(source string) string

	colorful bool
}

// NewTerminal builds a Terminal effects implementation. ANSI styling is
// enabled only when stdout is an actual terminal.
func NewTerminal(log zerolog.Logger, mem *memory.Store, registry *tools.Registry) *Terminal {
	return &Terminal{
		Out:      os.Stdout,
		In:       bufio.NewScanner(os.Stdin),
		Log:      log,
		Memory:   mem,
		Registry: registry,
		colorful: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (t *Terminal) StreamChunk(text string) {
	fmt.Fprint(t.Out, text)
}

func (t *Terminal) StreamDone() {
	fmt.Fprintln(t.Out)
}

func (t *Terminal) ToolStart(name, preview string) {
	t.Log.Debug().Str("tool", name).Str("preview", preview).Msg("tool start")
	line := fmt.Sprintf("  %s(%s)", name, preview)
	if t.colorful {
		line = color.YellowString("▶ ") + line
	}
	fmt.Fprintln(t.Out, line)
}

func (t *Terminal) ToolDone(name string, ok bool, output string) {
	t.Log.Debug().Str("tool", name).Bool("ok", ok).Msg("tool done")
	mark := "✓"
	paint := color.GreenString
	if !ok {
		mark = "✗"
		paint = color.RedString
	}
	if t.colorful {
		fmt.Fprintf(t.Out, "  %s %s\n", paint(mark), name)
	} else {
		fmt.Fprintf(t.Out, "  %s %s\n", mark, name)
	}
}

func (t *Terminal) Confirm(command string) bool {
	prompt := fmt.Sprintf("Allow %q? [y/N] ", command)
	if t.colorful {
		prompt = color.RedString(prompt)
	}
	fmt.Fprint(t.Out, prompt)
	if !t.In.Scan() {
		return false
	}
	reply := t.In.Text()
	return reply == "y" || reply == "Y" || reply == "yes"
}

func (t *Terminal) Ask(question string) string {
	prompt := question + " "
	if t.colorful {
		prompt = color.CyanString(prompt)
	}
	fmt.Fprint(t.Out, prompt)
	if !t.In.Scan() {
		return ""
	}
	return t.In.Text()
}

func (t *Terminal) Remember(content string) {
	t.Log.Debug().Str("content", content).Msg("remember")
	if err := t.Memory.Remember(content); err != nil {
		t.Log.Error().Err(err).Msg("remember failed")
	}
}

func (t *Terminal) Forget(content string) {
	t.Log.Debug().Str("content", content).Msg("forget")
	if err := t.Memory.Forget(content); err != nil {
		t.Log.Error().Err(err).Msg("forget failed")
	}
}

func (t *Terminal) RefreshSystem() {
	// The caller wires BuildSystemPrompt to reread the registry + memory
	// store; the conversation's SetSystem is called from cmd/gloop's
	// wiring closure to avoid this package depending on a specific
	// conversation instance beyond what Reboot already needs.
	if t.BuildSystemPrompt != nil {
		t.BuildSystemPrompt()
	}
}

func (t *Terminal) Reboot(reason string, conv conversation.Conversation) {
	t.Log.Info().Str("reason", reason).Msg("rebooting")
	if err := session.SaveRebootSession(conv.GetHistory(), reason, time.Now()); err != nil {
		t.Log.Error().Err(err).Msg("reboot save failed")
		return
	}
	os.Exit(session.RebootExitCode)
}

func (t *Terminal) ManageContext(instructions string) string {
	if t.ManageContextFn == nil {
		return "context management unavailable"
	}
	return t.ManageContextFn(instructions)
}

func (t *Terminal) Complete(summary string) {
	t.Log.Info().Str("summary", summary).Msg("task complete")
	line := "Done: " + summary
	if t.colorful {
		line = color.GreenString(line)
	}
	fmt.Fprintln(t.Out, line)
}

func (t *Terminal) InstallTool(source string) string {
	if t.InstallToolFn == nil {
		return "install unavailable"
	}
	return t.InstallToolFn(source)
}

func (t *Terminal) ListTools() string {
	defs := t.Registry.All()
	out := "Available tools:\n"
	for _, d := range defs {
		out += fmt.Sprintf("  %s — %s\n", d.Name, d.Description)
	}
	return out
}

func (t *Terminal) Spawn(task string) form.SpawnResult {
	if t.SpawnFn == nil {
		return form.SpawnResult{Success: false, Summary: "spawn unavailable"}
	}
	return t.SpawnFn(task)
}
