// Package parser turns raw LLM response text, in either of two competing
// markup dialects, into a form.Form via the Response Parser and Form
// constructor described by the agent's interpreter contract.
//
// A bespoke hand-rolled scanner is used instead of a general XML/HTML
// parser: neither dialect is well-formed XML (the sentinel dialect uses
// pipe-delimited literals, and the primary dialect tolerates a bare
// <tools> as a closing tag), so no general-purpose markup library in the
// example pack applies here.
package parser

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ianrumac/gloop/internal/form"
	"github.com/ianrumac/gloop/internal/markup"
)

// ParsedResponse is the result of extracting markup from a raw response.
type ParsedResponse struct {
	ToolCalls []form.ToolCall
	Remembers []string
	Forgets   []string
	CleanText string
}

// ParseResponse extracts tool calls and memory operations from text,
// recognizing both the primary <tools>/<tool>/<remember>/<forget> dialect
// and the alternative <|tool_calls_section_begin|> sentinel dialect.
func ParseResponse(text string) ParsedResponse {
	var out ParsedResponse

	calls, consumed := extractSentinelCalls(text)
	out.ToolCalls = append(out.ToolCalls, calls...)

	remaining := consumed
	tools, remembers, forgets, consumed2 := extractPrimaryElements(remaining)
	out.ToolCalls = append(out.ToolCalls, tools...)
	out.Remembers = remembers
	out.Forgets = forgets

	out.CleanText = strings.TrimSpace(consumed2)
	return out
}

// extractPrimaryElements scans for bare <tool>, <remember>, <forget>
// elements (whether or not they sit inside a <tools>...</tools> or bare
// </tools>-closed container — the container itself carries no information
// beyond grouping, once the full text is in hand) and returns the
// remaining text with all recognized elements removed.
func extractPrimaryElements(text string) (tools []form.ToolCall, remembers, forgets []string, rest string) {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if tag, content, next, ok := matchElement(text, i, "<tool>", "</tool>"); ok {
			if call, ok := markup.ParseCall(content); ok {
				tools = append(tools, form.ToolCall{Name: call.Name, RawArgs: call.Args})
			}
			i = next
			_ = tag
			continue
		}
		if _, content, next, ok := matchElement(text, i, "<remember>", "</remember>"); ok {
			remembers = append(remembers, strings.TrimSpace(content))
			i = next
			continue
		}
		if _, content, next, ok := matchElement(text, i, "<forget>", "</forget>"); ok {
			forgets = append(forgets, strings.TrimSpace(content))
			i = next
			continue
		}
		if strings.HasPrefix(text[i:], "<tools>") {
			i += len("<tools>")
			continue
		}
		if strings.HasPrefix(text[i:], "</tools>") {
			i += len("</tools>")
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return tools, remembers, forgets, b.String()
}

// matchElement checks whether text[i:] begins with openTag, and if so finds
// the nearest closeTag after it. It returns the element's inner content and
// the index just past the closing tag.
func matchElement(text string, i int, openTag, closeTag string) (tag, content string, next int, ok bool) {
	if !strings.HasPrefix(text[i:], openTag) {
		return "", "", 0, false
	}
	start := i + len(openTag)
	end := strings.Index(text[start:], closeTag)
	if end < 0 {
		return "", "", 0, false
	}
	content = text[start : start+end]
	next = start + end + len(closeTag)
	return openTag, content, next, true
}

const sentinelBegin = "<|tool_calls_section_begin|>"
const sentinelEnd = "<|tool_calls_section_end|>"
const callBegin = "<|tool_call_begin|>"
const argBegin = "<|tool_call_argument_begin|>"
const callEnd = "<|tool_call_end|>"

// extractSentinelCalls extracts the alternative dialect's tool calls and
// returns the text with the matched section removed.
func extractSentinelCalls(text string) ([]form.ToolCall, string) {
	start := strings.Index(text, sentinelBegin)
	if start < 0 {
		return nil, text
	}
	end := strings.Index(text[start:], sentinelEnd)
	if end < 0 {
		return nil, text
	}
	sectionEnd := start + end + len(sentinelEnd)
	section := text[start+len(sentinelBegin) : start+end]

	var calls []form.ToolCall
	i := 0
	for {
		cb := strings.Index(section[i:], callBegin)
		if cb < 0 {
			break
		}
		cb += i
		ce := strings.Index(section[cb:], callEnd)
		if ce < 0 {
			break
		}
		ce += cb
		body := section[cb+len(callBegin) : ce]
		if call, ok := parseSentinelCall(body); ok {
			calls = append(calls, call)
		}
		i = ce + len(callEnd)
	}

	rest := text[:start] + text[sectionEnd:]
	return calls, rest
}

func parseSentinelCall(body string) (form.ToolCall, bool) {
	argIdx := strings.Index(body, argBegin)
	if argIdx < 0 {
		return form.ToolCall{}, false
	}
	header := strings.TrimSpace(body[:argIdx])
	jsonText := strings.TrimSpace(body[argIdx+len(argBegin):])

	name := parseHeaderName(header)
	if name == "" {
		return form.ToolCall{}, false
	}

	if !gjson.Valid(jsonText) || !gjson.Parse(jsonText).IsObject() {
		return form.ToolCall{Name: name, RawArgs: []string{jsonText}}, true
	}

	var args []string
	gjson.Parse(jsonText).ForEach(func(_, value gjson.Result) bool {
		args = append(args, value.String())
		return true
	})
	return form.ToolCall{Name: name, RawArgs: args}, true
}

// parseHeaderName extracts Name from "functions.Name:index" or a bare
// "Name".
func parseHeaderName(header string) string {
	name := header
	if strings.HasPrefix(name, "functions.") {
		name = strings.TrimPrefix(name, "functions.")
	}
	if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
		if _, err := strconv.Atoi(name[idx+1:]); err == nil {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}
