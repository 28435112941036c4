package eval

import (
	"context"
	"strings"

	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/tools"
)

const pruneInstructions = "Prune old tool results and intermediate outputs. Keep the current task goal, recent results, and any information the agent is actively using."

// invoke executes a batch of tool calls in order, per §4.6.
func invoke(ctx context.Context, f form.Form, w *World, fx Effects) (form.Form, error) {
	results := make([]form.ToolResult, 0, len(f.Calls))

	for _, call := range f.Calls {
		if ctx.Err() != nil {
			return form.Form{}, ErrAborted
		}

		switch call.Name {
		case "AskUser":
			fx.ToolStart(call.Name, previewArgs(call.RawArgs))
			reply := fx.Ask(firstArg(call.RawArgs))
			out := "User answered: " + reply
			fx.ToolDone(call.Name, true, out)
			results = append(results, form.ToolResult{Name: call.Name, Output: out, Success: true})
			continue
		case "ManageContext":
			fx.ToolStart(call.Name, previewArgs(call.RawArgs))
			summary := fx.ManageContext(firstArg(call.RawArgs))
			fx.ToolDone(call.Name, true, summary)
			results = append(results, form.ToolResult{Name: call.Name, Output: summary, Success: true})
			continue
		}

		def, ok := w.Registry.Lookup(call.Name)
		if !ok {
			msg := "Unknown tool: " + call.Name
			fx.ToolDone(call.Name, false, msg)
			results = append(results, form.ToolResult{Name: call.Name, Output: msg, Success: false})
			continue
		}

		args := tools.ZipArgs(def.Arguments, call.RawArgs)

		danger, dangerous := "", false
		if call.Name == "Bash" {
			danger, dangerous = tools.DangerousBashCommand(args["command"])
		}
		if !dangerous && def.AskPermission != nil {
			danger, dangerous = def.AskPermission(args)
		}
		if dangerous && !fx.Confirm(danger) {
			fx.ToolDone(call.Name, false, "denied by user")
			results = append(results, form.ToolResult{Name: call.Name, Output: "User denied execution", Success: false})
			continue
		}

		fx.ToolStart(call.Name, previewArgs(call.RawArgs))
		out, err := def.Execute(args)
		if err != nil {
			msg := err.Error()
			fx.ToolDone(call.Name, false, msg)
			results = append(results, form.ToolResult{Name: call.Name, Output: msg, Success: false})
			continue
		}
		fx.ToolDone(call.Name, true, "ok")
		results = append(results, form.ToolResult{Name: call.Name, Output: out, Success: true})
	}

	for _, call := range f.Calls {
		if call.Name == "Reload" {
			fx.RefreshSystem()
			break
		}
	}

	*w.ToolCalls += len(f.Calls)
	if *w.ToolCalls >= w.ContextPruneThreshold {
		*w.ToolCalls = 0
		fx.ToolStart("ManageContext", "periodic prune")
		summary := fx.ManageContext(pruneInstructions)
		fx.ToolDone("ManageContext", true, summary)
	}

	return f.ThenResult(results), nil
}

// previewArgs joins truncated argument previews for a toolStart banner.
func previewArgs(args []string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) > 40 {
			a = a[:40]
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, ", ")
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
