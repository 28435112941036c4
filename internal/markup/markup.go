// Package markup parses the Name(args...) call-expression syntax shared by
// both response-parser dialects: bare, quoted and keyword-prefixed
// positional arguments.
package markup

import "strings"

// Call is a parsed Name(args...) expression.
type Call struct {
	Name string
	Args []string
}

// ParseCall parses a single "Name(arg1, arg2, ...)" expression. It returns
// false if text does not look like a call expression at all (no matching
// parens).
func ParseCall(text string) (Call, bool) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return Call{}, false
	}
	name := strings.TrimSpace(text[:open])
	if name == "" {
		return Call{}, false
	}
	inner := text[open+1 : len(text)-1]
	return Call{Name: name, Args: splitArgs(inner)}, true
}

// splitArgs splits a comma-separated argument list respecting ", ', and `
// quoting, then strips any keyword-argument prefix ("name=" or "name:")
// from each resulting element. Order is preserved; keyword prefixes affect
// only presentation, never reordering, since rawArgs is always positional.
func splitArgs(inner string) []string {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil
	}

	var args []string
	var cur strings.Builder
	var quote byte // 0 if not in a quoted region
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case quote != 0:
			if ch == '\\' && quote == '"' && i+1 < len(inner) {
				next := inner[i+1]
				switch next {
				case 'n':
					cur.WriteByte('\n')
				case 't':
					cur.WriteByte('\t')
				case '\\':
					cur.WriteByte('\\')
				default:
					cur.WriteByte(next)
				}
				i++
				continue
			}
			if ch == quote {
				quote = 0
				continue
			}
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
		case ch == ',':
			args = append(args, stripKeywordPrefix(strings.TrimSpace(cur.String())))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	args = append(args, stripKeywordPrefix(strings.TrimSpace(cur.String())))
	return args
}

// stripKeywordPrefix removes an optional "name=" or "name:" prefix when the
// part before the separator is a plain identifier.
func stripKeywordPrefix(s string) string {
	for _, sep := range []byte{'=', ':'} {
		idx := strings.IndexByte(s, sep)
		if idx <= 0 {
			continue
		}
		key := s[:idx]
		if isIdentifier(key) {
			return strings.TrimSpace(s[idx+1:])
		}
	}
	return s
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
