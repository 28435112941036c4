// Package contextprune implements the Context-Prune Fork: a nested
// interpreter run, against a three-tool restricted registry and a silent
// Effects implementation, whose sole purpose is to edit the outer
// conversation's message history.
package contextprune

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ianrumac/gloop/internal/conversation"
	"github.com/ianrumac/gloop/internal/eval"
	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/tools"
)

const systemPrompt = `You are a context-pruning assistant. You can inspect messages by index and delete ones that are no longer needed. Call CompleteTask with a short summary when done.`

// Run executes a nested interpreter against a forked conversation and
// applies the resulting delete-set to outer's history. It returns a short
// summary describing what was pruned, used as this operation's ToolResult
// output in the outer run.
func Run(ctx context.Context, outer conversation.Conversation, instructions string) string {
	history := outer.GetHistory()
	forked := outer.Fork(systemPrompt)

	deleteSet := make(map[int]bool)
	registry := buildRestrictedRegistry(history, deleteSet)

	world := eval.NewWorld(forked, registry, 1<<30) // nested pruning never re-triggers itself
	fx := &silentEffects{}

	input := fmt.Sprintf("Instructions: %s\n\nMessage index:\n%s", instructions, summarizeHistory(history))

	if err := eval.Eval(ctx, form.Think(input), world, fx); err != nil {
		return fmt.Sprintf("context prune aborted: %v", err)
	}

	if len(deleteSet) == 0 {
		return "no messages pruned"
	}

	kept := make([]conversation.Message, 0, len(history))
	for i, m := range history {
		if i == 0 || !deleteSet[i] {
			kept = append(kept, m)
		}
	}
	outer.SetHistory(kept)
	return fmt.Sprintf("pruned %d message(s): %s", len(deleteSet), fx.summary)
}

func summarizeHistory(history []conversation.Message) string {
	var b strings.Builder
	for i, m := range history {
		content := m.Content
		first, last := firstN(content, 50), lastN(content, 50)
		fmt.Fprintf(&b, "#%d [%s] %q\n", i, m.Role, first+"... ..."+last)
	}
	return b.String()
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func buildRestrictedRegistry(history []conversation.Message, deleteSet map[int]bool) *tools.Registry {
	view := tools.Definition{
		Name:        "ViewMessage",
		Description: "View the full content of a message by index.",
		Arguments:   []tools.Argument{{Name: "index", Description: "message index"}},
		Execute: func(a tools.Args) (string, error) {
			idx, err := strconv.Atoi(strings.TrimSpace(a["index"]))
			if err != nil || idx < 0 || idx >= len(history) {
				return fmt.Sprintf("No message at index %s", a["index"]), nil
			}
			m := history[idx]
			return fmt.Sprintf("#%d [%s]\n%s", idx, m.Role, m.Content), nil
		},
	}

	del := tools.Definition{
		Name:        "DeleteMessages",
		Description: "Mark comma-separated message indexes for deletion.",
		Arguments:   []tools.Argument{{Name: "indexes", Description: "comma-separated indexes"}},
		Execute: func(a tools.Args) (string, error) {
			count := 0
			for _, part := range strings.Split(a["indexes"], ",") {
				idx, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					continue
				}
				if idx > 0 && idx < len(history) {
					deleteSet[idx] = true
					count++
				}
			}
			return fmt.Sprintf("marked %d message(s) for deletion", count), nil
		},
	}

	complete := tools.Definition{
		Name:        "CompleteTask",
		Description: "Finish context pruning with a summary.",
		Arguments:   []tools.Argument{{Name: "summary", Description: "summary"}},
		Execute: func(tools.Args) (string, error) {
			return "", fmt.Errorf("CompleteTask is handled by the parser and should never reach the registry")
		},
	}

	return tools.NewRegistry(view, del, complete)
}

// silentEffects is the Context-Prune Fork's Effects implementation: no UI
// output, memory/refresh/reboot are no-ops or refusals, nested pruning is
// refused.
type silentEffects struct {
	summary string
}

func (s *silentEffects) StreamChunk(string)            {}
func (s *silentEffects) StreamDone()                   {}
func (s *silentEffects) ToolStart(string, string)      {}
func (s *silentEffects) ToolDone(string, bool, string) {}
func (s *silentEffects) Confirm(string) bool           { return true }
func (s *silentEffects) Ask(string) string             { return "" }
func (s *silentEffects) Remember(string)                {}
func (s *silentEffects) Forget(string)                  {}
func (s *silentEffects) RefreshSystem()                 {}
func (s *silentEffects) Reboot(string, conversation.Conversation) {}
func (s *silentEffects) ManageContext(string) string {
	return "nested context pruning is not supported"
}
func (s *silentEffects) Complete(summary string) { s.summary = summary }
func (s *silentEffects) InstallTool(string) string { return "" }
func (s *silentEffects) ListTools() string          { return "" }
func (s *silentEffects) Spawn(string) form.SpawnResult {
	return form.SpawnResult{Success: false, Summary: "spawn is not supported inside context pruning"}
}
