// Package eval implements the trampolined Form interpreter: the World it
// threads through a run, the Effects surface it calls out to, and the
// per-tag dispatch table.
package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/ianrumac/gloop/internal/conversation"
	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/tools"
)

// ErrAborted is raised when the run's cancellation fires.
var ErrAborted = errors.New("aborted")

// World is the per-run context threaded through evaluation. ToolCalls is a
// shared mutable cell (rather than a plain int) so each recursive step
// observes the same running count.
type World struct {
	Conversation          conversation.Conversation
	Registry              *tools.Registry
	ToolCalls             *int
	ContextPruneThreshold int
}

// NewWorld constructs a World with a fresh tool-call counter.
func NewWorld(conv conversation.Conversation, registry *tools.Registry, pruneThreshold int) *World {
	count := 0
	return &World{Conversation: conv, Registry: registry, ToolCalls: &count, ContextPruneThreshold: pruneThreshold}
}

// Effects is the interpreter's only outward dependency: every side effect
// a Form can describe is invoked through this interface.
type Effects interface {
	StreamChunk(text string)
	StreamDone()
	ToolStart(name, preview string)
	ToolDone(name string, ok bool, output string)
	Confirm(command string) bool
	Ask(question string) string
	Remember(content string)
	Forget(content string)
	RefreshSystem()
	Reboot(reason string, conv conversation.Conversation)
	ManageContext(instructions string) string
	Complete(summary string)
	InstallTool(source string) string
	ListTools() string
	Spawn(task string) form.SpawnResult
}

// Eval is the trampoline: it loops over successive forms rather than
// recursing natively, so long Invoke→Think→Invoke... chains don't grow the
// native call stack. Seq's member forms are each evaluated via a nested
// Eval call, which is fine since Seq nesting in practice is shallow (a
// memory-op prefix followed by one body form).
func Eval(ctx context.Context, f form.Form, w *World, fx Effects) error {
	for {
		if ctx.Err() != nil {
			return ErrAborted
		}

		switch f.Tag {
		case form.TagNil:
			return nil

		case form.TagDone:
			fx.Complete(f.Summary)
			return nil

		case form.TagEmit:
			fx.StreamChunk(f.Content)
			fx.StreamDone()
			f = *f.Next
			continue

		case form.TagRemember:
			fx.Remember(f.Content)
			f = *f.Next
			continue

		case form.TagForget:
			fx.Forget(f.Content)
			f = *f.Next
			continue

		case form.TagConfirm:
			ok := fx.Confirm(f.Command)
			f = f.ThenBool(ok)
			continue

		case form.TagAsk:
			answer := fx.Ask(f.Question)
			f = f.ThenText(answer)
			continue

		case form.TagRefresh:
			fx.RefreshSystem()
			return nil

		case form.TagReboot:
			fx.Reboot(f.Reason, w.Conversation)
			return nil

		case form.TagSeq:
			for _, sub := range f.Forms {
				if err := Eval(ctx, sub, w, fx); err != nil {
					return err
				}
			}
			return nil

		case form.TagInstall:
			out := fx.InstallTool(f.Source)
			fx.StreamChunk(out)
			fx.StreamDone()
			return nil

		case form.TagListTools:
			out := fx.ListTools()
			fx.StreamChunk(out)
			fx.StreamDone()
			return nil

		case form.TagSpawn:
			result := fx.Spawn(f.Task)
			f = f.ThenSpawn(result)
			continue

		case form.TagThink:
			next, err := think(ctx, f, w, fx)
			if err != nil {
				return err
			}
			f = next
			continue

		case form.TagInvoke:
			next, err := invoke(ctx, f, w, fx)
			if err != nil {
				return err
			}
			f = next
			continue

		default:
			return fmt.Errorf("eval: unhandled form tag %v", f.Tag)
		}
	}
}
