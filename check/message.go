package check

import (
	"fmt"
	"strings"
)

// FormatMessage substitutes {0}, {1}... in template with args. Two single
// quotes produce one. Placeholders without an argument are left as is.
func FormatMessage(template string, args ...any) string {
	if !strings.ContainsAny(template, "{'") {
		return template
	}
	var b strings.Builder
	b.Grow(len(template) + 16)
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '\'' && i+1 < len(template) && template[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			idx, ok := argIndex(template[i+1 : i+end])
			if !ok || idx >= len(args) {
				b.WriteString(template[i : i+end+1])
			} else {
				fmt.Fprint(&b, args[idx])
			}
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func argIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
