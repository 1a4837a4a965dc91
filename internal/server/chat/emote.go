package chat

import (
	"strings"

	"github.com/kyokomi/emoji/v2"
)

// ExpandShortcodes replaces emoji shortcodes (":beer:", ":smile:", ...)
// with their glyphs. Unknown codes and stray colons pass through untouched,
// so the function is idempotent on input without shortcode tokens.
func ExpandShortcodes(s string) string {
	if !strings.Contains(s, ":") {
		return s
	}

	codes := emoji.CodeMap()

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == ':' {
			if j := strings.IndexByte(s[i+1:], ':'); j >= 0 {
				code := s[i : i+j+2]
				if glyph, ok := codes[code]; ok {
					b.WriteString(glyph)
					i += j + 2
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}

	return b.String()
}
