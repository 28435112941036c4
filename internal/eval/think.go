package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/parser"
	"github.com/ianrumac/gloop/internal/streamfilter"
)

// think drives one LLM turn: stream deltas through the Stream Filter,
// detect an early-complete tool block, and parse the accumulated text into
// the next Form. It races the provider's stream against ctx, abandoning
// the channel without waiting for the producer to notice cancellation —
// the provider's own goroutine handles that teardown asynchronously.
func think(ctx context.Context, f form.Form, w *World, fx Effects) (form.Form, error) {
	filter := streamfilter.New(
		func(s string) { fx.StreamChunk(s) },
		func(streamfilter.ToolParsedEvent) {}, // no Effects hook for mid-stream previews beyond clean text
	)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := w.Conversation.Stream(streamCtx, f.Input)
	if err != nil {
		return form.Form{}, fmt.Errorf("think: %w", err)
	}

	var acc strings.Builder
	earlyComplete := false
	aborted := false

readLoop:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			cancel()
			break readLoop
		case ev, ok := <-ch:
			if !ok {
				break readLoop
			}
			if ev.Err != nil {
				return form.Form{}, fmt.Errorf("think: %w", ev.Err)
			}
			acc.WriteString(ev.TextDelta)
			filter.Write(ev.TextDelta)
			if hasCompleteToolBlock(acc.String()) {
				earlyComplete = true
				cancel()
				break readLoop
			}
		}
	}

	filter.Flush()
	fx.StreamDone()

	if earlyComplete || aborted {
		w.Conversation.AppendAssistant(acc.String())
	}

	if aborted {
		return form.Form{}, ErrAborted
	}

	return parser.ParseToForm(acc.String()), nil
}

// hasCompleteToolBlock reports whether the accumulated text contains a
// fully-closed tool block in either dialect, letting the Think step break
// out of the stream before the model finishes its epilogue prose.
func hasCompleteToolBlock(acc string) bool {
	if idx := strings.Index(acc, "<tools>"); idx >= 0 {
		if strings.Contains(acc[idx+len("<tools>"):], "</tools>") {
			return true
		}
	}
	return strings.Contains(acc, "<|tool_calls_section_begin|>") &&
		strings.Contains(acc, "<|tool_calls_section_end|>")
}
