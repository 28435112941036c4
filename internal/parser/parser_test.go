package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianrumac/gloop/internal/form"
)

func TestParseResponsePrimaryDialect(t *testing.T) {
	text := `Let me echo that. <tools><tool>Echo("hello")</tool></tools>`
	parsed := ParseResponse(text)
	require.Len(t, parsed.ToolCalls, 1)
	assert.Equal(t, "Echo", parsed.ToolCalls[0].Name)
	assert.Equal(t, []string{"hello"}, parsed.ToolCalls[0].RawArgs)
}

func TestParseResponseMemoryOps(t *testing.T) {
	text := `<tools><remember>buy milk</remember><forget>old note</forget><tool>Echo("hi")</tool></tools>`
	parsed := ParseResponse(text)
	assert.Equal(t, []string{"buy milk"}, parsed.Remembers)
	assert.Equal(t, []string{"old note"}, parsed.Forgets)
	require.Len(t, parsed.ToolCalls, 1)
}

func TestParseResponseSentinelDialect(t *testing.T) {
	text := `<|tool_calls_section_begin|>` +
		`<|tool_call_begin|>functions.Echo:0<|tool_call_argument_begin|>{"text":"hello"}<|tool_call_end|>` +
		`<|tool_calls_section_end|>`
	parsed := ParseResponse(text)
	require.Len(t, parsed.ToolCalls, 1)
	assert.Equal(t, "Echo", parsed.ToolCalls[0].Name)
	assert.Equal(t, []string{"hello"}, parsed.ToolCalls[0].RawArgs)
}

func TestParseResponseSentinelFallsBackToRawTextOnInvalidJSON(t *testing.T) {
	text := `<|tool_calls_section_begin|>` +
		`<|tool_call_begin|>Echo<|tool_call_argument_begin|>not json<|tool_call_end|>` +
		`<|tool_calls_section_end|>`
	parsed := ParseResponse(text)
	require.Len(t, parsed.ToolCalls, 1)
	assert.Equal(t, []string{"not json"}, parsed.ToolCalls[0].RawArgs)
}

func TestParseToFormPlainTextHasNoToolCalls(t *testing.T) {
	f := ParseToForm("Hello, world!")
	assert.Equal(t, form.TagSeq, f.Tag)
	require.Len(t, f.Forms, 1)
	assert.Equal(t, form.TagNil, f.Forms[0].Tag)
}

func TestParseToFormSingleTool(t *testing.T) {
	f := ParseToForm(`<tools><tool>Echo("hello")</tool></tools>`)
	require.Equal(t, form.TagInvoke, f.Tag)
	require.Len(t, f.Calls, 1)
	assert.Equal(t, "Echo", f.Calls[0].Name)

	next := f.ThenResult([]form.ToolResult{{Name: "Echo", Output: "hello", Success: true}})
	assert.Equal(t, form.TagThink, next.Tag)
	assert.Contains(t, next.Input, `name="Echo"`)
	assert.Contains(t, next.Input, "hello")
}

func TestParseToFormCompleteTaskWins(t *testing.T) {
	f := ParseToForm(`All done. <tools><tool>CompleteTask("Finished the task")</tool></tools>`)
	assert.Equal(t, form.TagDone, f.Tag)
	assert.Equal(t, "Finished the task", f.Summary)
}

func TestParseToFormRebootWinsOverCompleteTask(t *testing.T) {
	f := ParseToForm(`<tools><tool>CompleteTask("done")</tool><tool>Reboot("new code")</tool></tools>`)
	assert.Equal(t, form.TagReboot, f.Tag)
	assert.Equal(t, "new code", f.Reason)
}

func TestParseToFormRegularToolsPrecedeTerminal(t *testing.T) {
	f := ParseToForm(`<tools><tool>Echo("work")</tool><tool>CompleteTask("ok")</tool></tools>`)
	require.Equal(t, form.TagInvoke, f.Tag)
	require.Len(t, f.Calls, 1)
	assert.Equal(t, "Echo", f.Calls[0].Name)
	next := f.ThenResult(nil)
	assert.Equal(t, form.TagDone, next.Tag)
	assert.Equal(t, "ok", next.Summary)
}

func TestSpawnDetection(t *testing.T) {
	task, ok := spawnTask(`gloop --task "do x" --model m/n`)
	require.True(t, ok)
	assert.Equal(t, "do x", task)

	_, ok = spawnTask(`echo "gloop --task \"hi\""`)
	assert.False(t, ok)
}

func TestParseToFormSpawnProducesSpawnForm(t *testing.T) {
	f := ParseToForm(`<tools><tool>Bash("gloop --task \"do x\"")</tool></tools>`)
	require.Equal(t, form.TagSpawn, f.Tag)
	assert.Equal(t, "do x", f.Task)

	next := f.ThenSpawn(form.SpawnResult{Success: true, Summary: "finished x"})
	assert.Equal(t, form.TagThink, next.Tag)
	assert.Contains(t, next.Input, "finished x")
}

func TestParseToFormUnknownToolSurvivesParsing(t *testing.T) {
	f := ParseToForm(`<tools><tool>NonExistent("arg")</tool></tools>`)
	require.Equal(t, form.TagInvoke, f.Tag)
	assert.Equal(t, "NonExistent", f.Calls[0].Name)
}
