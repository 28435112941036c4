package subagent

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventWriter emits one JSON object per line to an underlying writer, used
// by headless (--task) runs in place of the interactive Terminal effects.
type EventWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{w: w}
}

// emit inlines fields at the top level alongside ts/type, matching the
// spec's "{ts, type, ...}" shape exactly rather than nesting them.
func (ew *EventWriter) emit(typ string, fields map[string]any) {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	rec := map[string]any{"ts": time.Now().Format(time.RFC3339Nano), "type": typ}
	for k, v := range fields {
		rec[k] = v
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	ew.w.Write(data)
	ew.w.Write([]byte("\n"))
}

func (ew *EventWriter) Start(task string)            { ew.emit("start", map[string]any{"task": task}) }
func (ew *EventWriter) Assistant(text string)         { ew.emit("assistant", map[string]any{"text": text}) }
func (ew *EventWriter) ToolStart(name, preview string) {
	ew.emit("tool_start", map[string]any{"name": name, "preview": preview})
}
func (ew *EventWriter) ToolDone(name string, ok bool, output string) {
	ew.emit("tool_done", map[string]any{"name": name, "ok": ok, "output": output})
}
func (ew *EventWriter) Remember(content string) { ew.emit("remember", map[string]any{"content": content}) }
func (ew *EventWriter) Forget(content string)   { ew.emit("forget", map[string]any{"content": content}) }
func (ew *EventWriter) RefreshSystem()           { ew.emit("refresh_system", nil) }
func (ew *EventWriter) Reboot(reason string)     { ew.emit("reboot", map[string]any{"reason": reason}) }
func (ew *EventWriter) Complete(summary string, usage map[string]any) {
	ew.emit("complete", map[string]any{"summary": summary, "usage": usage})
}
func (ew *EventWriter) Usage(usage map[string]any) { ew.emit("usage", usage) }
func (ew *EventWriter) Error(message string)       { ew.emit("error", map[string]any{"message": message}) }
