package parser

import "strings"

// tokenizeCommand splits a shell command string using the spec's POSIX-like
// but intentionally non-standard quoting: single quotes are fully literal;
// double-quote and backtick regions both respect backslash escapes (neither
// performs command substitution, unlike real POSIX backticks).
func tokenizeCommand(cmd string) []string {
	var tokens []string
	var cur strings.Builder
	haveToken := false
	var quote byte

	flush := func() {
		if haveToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveToken = false
		}
	}

	for i := 0; i < len(cmd); i++ {
		ch := cmd[i]
		switch {
		case quote == '\'':
			if ch == '\'' {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case quote == '"' || quote == '`':
			if ch == '\\' && i+1 < len(cmd) {
				cur.WriteByte(cmd[i+1])
				i++
				continue
			}
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			haveToken = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
			haveToken = true
		}
	}
	flush()
	return tokens
}

// spawnTask reports whether cmd is of the form "gloop [flags...] --task
// "..."" and, if so, returns the extracted task string.
func spawnTask(cmd string) (task string, ok bool) {
	tokens := tokenizeCommand(cmd)
	if len(tokens) == 0 {
		return "", false
	}
	if basename(tokens[0]) != "gloop" {
		return "", false
	}
	for i, tok := range tokens {
		if tok == "--task" && i+1 < len(tokens) {
			return tokens[i+1], true
		}
	}
	return "", false
}

func basename(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
