// Package streamfilter implements the byte-oriented suppression state
// machine that separates clean user-visible prose from tool/memory markup
// in a streaming LLM response, firing early tool-parsed notifications as
// soon as a complete <tool>...</tool> block becomes visible.
package streamfilter

import "strings"

// ToolParsedEvent reports a tool block observed mid-stream, before the
// enclosing container has closed.
type ToolParsedEvent struct {
	Name    string
	Preview string
}

var openingTags = []string{
	"<tools>",
	"<remember>",
	"<forget>",
	"<|tool_calls_section_begin|>",
}

var closingTags = map[string]string{
	"<tools>":                      "</tools>",
	"<remember>":                   "</remember>",
	"<forget>":                     "</forget>",
	"<|tool_calls_section_begin|>": "<|tool_calls_section_end|>",
}

var toolContainers = map[string]bool{
	"<tools>":                      true,
	"<|tool_calls_section_begin|>": true,
}

type state int

const (
	stateNormal state = iota
	stateBuffering
	stateSuppressing
)

// Filter is a single-use stateful stream scanner. Feed it chunks via
// Write; it calls onClean for user-visible text and onToolParsed for each
// newly observed <tool>...</tool> element within a tool-container region.
type Filter struct {
	onClean      func(string)
	onToolParsed func(ToolParsedEvent)

	state      state
	buf        strings.Builder // buffering-state accumulator
	openTag    string          // the opening tag currently suppressing, if any
	suppressed strings.Builder // accumulated suppressed text since the opening tag
	depth      int
	emitted    int // count of <tool> elements already reported via onToolParsed
}

// New constructs a Filter. onClean receives user-visible text as it becomes
// available; onToolParsed fires for each tool block detected mid-stream.
func New(onClean func(string), onToolParsed func(ToolParsedEvent)) *Filter {
	return &Filter{onClean: onClean, onToolParsed: onToolParsed}
}

// Write feeds one chunk of stream text through the filter.
func (f *Filter) Write(chunk string) {
	for i := 0; i < len(chunk); i++ {
		f.step(chunk[i])
	}
}

func (f *Filter) step(ch byte) {
	switch f.state {
	case stateNormal:
		if ch == '<' {
			f.state = stateBuffering
			f.buf.Reset()
			f.buf.WriteByte(ch)
			return
		}
		f.emit(string(ch))

	case stateBuffering:
		f.buf.WriteByte(ch)
		cur := f.buf.String()
		if tag, ok := matchOpeningTag(cur); ok {
			f.state = stateSuppressing
			f.openTag = tag
			f.depth = 0
			f.emitted = 0
			f.suppressed.Reset()
			f.suppressed.WriteString(cur)
			f.buf.Reset()
			return
		}
		if !anyTagHasPrefix(cur) {
			f.emit(cur)
			f.buf.Reset()
			f.state = stateNormal
		}

	case stateSuppressing:
		f.suppressed.WriteByte(ch)
		f.checkSuppressionProgress()
	}
}

func (f *Filter) checkSuppressionProgress() {
	buf := f.suppressed.String()
	closeTag := closingTags[f.openTag]

	if strings.HasSuffix(buf, f.openTag) {
		if f.depth == 0 {
			// Depth-0 repeat of the opening literal: the forgiving
			// hidden-<tools> closer quirk. Exit suppression.
			f.exitSuppression()
			return
		}
		f.depth++
		return
	}

	if strings.HasSuffix(buf, closeTag) {
		if f.depth > 0 {
			f.depth--
			return
		}
		f.exitSuppression()
		return
	}

	if toolContainers[f.openTag] && strings.HasSuffix(buf, "</tool>") {
		f.scanForNewTools(buf)
	}
}

func (f *Filter) exitSuppression() {
	if toolContainers[f.openTag] {
		f.scanForNewTools(f.suppressed.String())
	}
	f.state = stateNormal
	f.openTag = ""
	f.depth = 0
	f.suppressed.Reset()
}

func (f *Filter) scanForNewTools(buf string) {
	matches := findToolElements(buf)
	for i := f.emitted; i < len(matches); i++ {
		name, args := parseToolOpening(matches[i])
		preview := truncate(firstArg(args), 60)
		if f.onToolParsed != nil {
			f.onToolParsed(ToolParsedEvent{Name: name, Preview: preview})
		}
	}
	f.emitted = len(matches)
}

func (f *Filter) emit(s string) {
	if s != "" && f.onClean != nil {
		f.onClean(s)
	}
}

// Flush must be called at end of stream; it emits any still-buffering text
// as normal output and resets state for reuse.
func (f *Filter) Flush() {
	if f.state == stateBuffering {
		f.emit(f.buf.String())
	}
	f.state = stateNormal
	f.buf.Reset()
	f.openTag = ""
	f.depth = 0
	f.emitted = 0
	f.suppressed.Reset()
}

func matchOpeningTag(s string) (string, bool) {
	for _, tag := range openingTags {
		if s == tag {
			return tag, true
		}
	}
	return "", false
}

func anyTagHasPrefix(s string) bool {
	for _, tag := range openingTags {
		if strings.HasPrefix(tag, s) {
			return true
		}
	}
	return false
}

// findToolElements returns each <tool>...</tool> substring found in buf, in
// order of appearance.
func findToolElements(buf string) []string {
	var out []string
	rest := buf
	offset := 0
	for {
		start := strings.Index(rest, "<tool>")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "</tool>")
		if end < 0 {
			break
		}
		end += start + len("</tool>")
		out = append(out, rest[start:end])
		offset += end
		rest = buf[offset:]
	}
	return out
}

func parseToolOpening(el string) (name string, args string) {
	inner := strings.TrimSuffix(strings.TrimPrefix(el, "<tool>"), "</tool>")
	open := strings.IndexByte(inner, '(')
	if open < 0 {
		return strings.TrimSpace(inner), ""
	}
	name = strings.TrimSpace(inner[:open])
	close := strings.LastIndexByte(inner, ')')
	if close < open {
		return name, ""
	}
	return name, inner[open+1 : close]
}

func firstArg(argList string) string {
	argList = strings.TrimSpace(argList)
	if argList == "" {
		return ""
	}
	if idx := strings.IndexByte(argList, ','); idx >= 0 {
		argList = argList[:idx]
	}
	return strings.Trim(strings.TrimSpace(argList), `"'`+"`")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
