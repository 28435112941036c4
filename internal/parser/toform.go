package parser

import (
	"fmt"
	"strings"

	"github.com/ianrumac/gloop/internal/form"
)

// ParseToForm translates raw response text into the next Form: memory ops
// first, then partitioning into terminal (Reboot/CompleteTask), spawn, and
// regular tool calls, per the interpreter's response-parsing contract.
func ParseToForm(text string) form.Form {
	parsed := ParseResponse(text)

	var memForms []form.Form
	for _, c := range parsed.Remembers {
		memForms = append(memForms, form.Remember(c, form.Nil()))
	}
	for _, c := range parsed.Forgets {
		memForms = append(memForms, form.Forget(c, form.Nil()))
	}

	if len(parsed.ToolCalls) == 0 {
		memForms = append(memForms, form.Nil())
		return form.Seq(memForms...)
	}

	var reboot, completeTask *form.ToolCall
	var regular []form.ToolCall
	for _, c := range parsed.ToolCalls {
		switch c.Name {
		case "Reboot":
			if reboot == nil {
				cc := c
				reboot = &cc
			}
		case "CompleteTask":
			if completeTask == nil {
				cc := c
				completeTask = &cc
			}
		default:
			regular = append(regular, c)
		}
	}

	var terminal *form.Form
	switch {
	case reboot != nil:
		t := form.Reboot(firstOr(reboot.RawArgs, ""))
		terminal = &t
	case completeTask != nil:
		t := form.Done(firstOr(completeTask.RawArgs, ""))
		terminal = &t
	}

	var plain []form.ToolCall
	var spawnTasks []string
	for _, c := range regular {
		if c.Name == "Bash" && len(c.RawArgs) > 0 {
			if task, ok := spawnTask(c.RawArgs[0]); ok {
				spawnTasks = append(spawnTasks, task)
				continue
			}
		}
		plain = append(plain, c)
	}

	var body form.Form
	switch {
	case terminal != nil:
		t := *terminal
		if len(plain) == 0 {
			body = t
		} else {
			body = form.Invoke(plain, func([]form.ToolResult) form.Form { return t })
		}
	case len(spawnTasks) > 0:
		if len(plain) > 0 {
			body = form.Invoke(plain, func(results []form.ToolResult) form.Form {
				return buildSpawnChain(spawnTasks, formatResults(results))
			})
		} else {
			body = buildSpawnChain(spawnTasks, "")
		}
	default:
		body = form.Invoke(plain, func(results []form.ToolResult) form.Form {
			return form.Think(formatResults(results))
		})
	}

	if len(memForms) == 0 {
		return body
	}
	return form.Seq(append(memForms, body)...)
}

func buildSpawnChain(tasks []string, prefix string) form.Form {
	if len(tasks) == 0 {
		return form.Think(prefix)
	}
	task, rest := tasks[0], tasks[1:]
	return form.Spawn(task, func(r form.SpawnResult) form.Form {
		blob := formatToolResult("Bash", r.Summary, r.Success)
		return buildSpawnChain(rest, joinBlobs(prefix, blob))
	})
}

func formatResults(results []form.ToolResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, formatToolResult(r.Name, r.Output, r.Success))
	}
	return strings.Join(parts, "\n\n")
}

func formatToolResult(name, output string, success bool) string {
	status := "success"
	if !success {
		status = "error"
	}
	return fmt.Sprintf("<tool_result name=%q status=%q>\n%s\n</tool_result>", name, status, output)
}

func joinBlobs(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n\n" + b
}

func firstOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}
