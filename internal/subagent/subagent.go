// Package subagent implements the spawn launcher: running the agent's own
// binary headless with a task prompt, and reading back its newline-
// delimited JSON event stream.
package subagent

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ianrumac/gloop/internal/form"
)

// TaskSuffix is the fixed instruction appended to every subagent task
// prompt, unless already present.
const TaskSuffix = "Do not stop working until you think the task is complete, then return the results. make sure to do that by calling task complete tool with the results as arguments ."

// WithTaskSuffix appends TaskSuffix to task if it isn't already there.
func WithTaskSuffix(task string) string {
	if strings.Contains(task, TaskSuffix) {
		return task
	}
	return strings.TrimSpace(task) + " " + TaskSuffix
}

// Options configures a subagent launch.
type Options struct {
	BinaryPath string
	Model      string
	Provider   string
	Debug      bool
}

// Launch runs the agent binary headless with --task, writing its NDJSON
// event stream to a temp file, and returns the extracted SpawnResult once
// the child exits.
func Launch(opts Options, task string) form.SpawnResult {
	eventFile, err := os.CreateTemp("", "gloop-events-*.ndjson")
	if err != nil {
		return form.SpawnResult{Success: false, Summary: "failed to allocate event file", Stderr: err.Error()}
	}
	eventPath := eventFile.Name()
	eventFile.Close()
	defer os.Remove(eventPath)

	args := []string{"--task", WithTaskSuffix(task), "--events-file", eventPath}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.Provider != "" {
		args = append(args, "--provider", opts.Provider)
	}
	if opts.Debug {
		args = append(args, "--debug")
	}

	cmd := exec.Command(opts.BinaryPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	summary, usage, ok := readCompleteEvent(eventPath)
	exitCode := 0
	if exitErr, isExit := asExitError(runErr); isExit {
		exitCode = exitErr
	}

	result := form.SpawnResult{
		Success:  runErr == nil && ok,
		Summary:  summary,
		ExitCode: exitCode,
		Stderr:   stderr.String(),
	}
	if !ok && runErr != nil {
		result.Summary = fmt.Sprintf("subagent failed: %v", runErr)
	}
	_ = usage
	return result
}

func asExitError(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode(), true
	}
	return -1, true
}

// readCompleteEvent scans the NDJSON event file for the last "complete"
// event and extracts its summary/usage fields via gjson, avoiding a
// dedicated struct per event type.
func readCompleteEvent(path string) (summary string, usage string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !gjson.Valid(line) {
			continue
		}
		if gjson.Get(line, "type").String() != "complete" {
			continue
		}
		summary = gjson.Get(line, "summary").String()
		usage = gjson.Get(line, "usage").Raw
		ok = true
	}
	return summary, usage, ok
}
