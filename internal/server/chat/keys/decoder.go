// Package keys decodes the raw byte stream of a terminal session into key
// events. The decoder is stateful: partial UTF-8 runes and partial escape
// sequences are retained between calls, so callers may feed bytes in
// whatever chunks the transport delivers them.
package keys

import "unicode/utf8"

type KeyType int

const (
	// KeyRune is a printable character, space included.
	KeyRune KeyType = iota
	KeyEnter
	KeyBackspace
	KeyCtrlN
	KeyCtrlQ
)

type Key struct {
	Type KeyType
	Rune rune
}

const (
	byteBackspace = 0x08
	byteCtrlN     = 0x0e
	byteCtrlQ     = 0x11
	byteEscape    = 0x1b
	byteDelete    = 0x7f
)

type Decoder struct {
	pending []byte
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset drops any partially-accumulated sequence. Called on mode switches
// so stale escape bytes cannot leak into the new mode.
func (d *Decoder) Reset() {
	d.pending = nil
}

// Feed consumes a chunk of transport bytes and returns the complete key
// events they produce. Unrecognized control bytes and terminal escape
// sequences (cursor keys and the like) are consumed and dropped.
func (d *Decoder) Feed(p []byte) []Key {
	d.pending = append(d.pending, p...)

	var out []Key
	for len(d.pending) > 0 {
		b := d.pending[0]

		switch {
		case b == '\r' || b == '\n':
			out = append(out, Key{Type: KeyEnter})
			d.pending = d.pending[1:]

		case b == byteBackspace || b == byteDelete:
			out = append(out, Key{Type: KeyBackspace})
			d.pending = d.pending[1:]

		case b == byteCtrlN:
			out = append(out, Key{Type: KeyCtrlN})
			d.pending = d.pending[1:]

		case b == byteCtrlQ:
			out = append(out, Key{Type: KeyCtrlQ})
			d.pending = d.pending[1:]

		case b == byteEscape:
			n, complete := escapeLen(d.pending)
			if !complete {
				// Wait for the rest of the sequence.
				return out
			}
			d.pending = d.pending[n:]

		case b < 0x20:
			// Other control bytes are ignored.
			d.pending = d.pending[1:]

		default:
			if !utf8.FullRune(d.pending) {
				if len(d.pending) < utf8.UTFMax {
					// Partial rune, keep for the next chunk.
					return out
				}
				// Cannot be completed, drop the lead byte.
				d.pending = d.pending[1:]
				continue
			}
			r, size := utf8.DecodeRune(d.pending)
			d.pending = d.pending[size:]
			if r == utf8.RuneError && size == 1 {
				continue
			}
			out = append(out, Key{Type: KeyRune, Rune: r})
		}
	}

	d.pending = nil
	return out
}

// escapeLen reports the length of the escape sequence starting at p[0] and
// whether the sequence is complete. Handles CSI ("ESC ["), SS3 ("ESC O")
// and single-byte alt sequences.
func escapeLen(p []byte) (int, bool) {
	if len(p) < 2 {
		return 0, false
	}

	switch p[1] {
	case '[':
		// CSI: parameter bytes 0x30-0x3f, intermediate 0x20-0x2f,
		// terminated by a final byte 0x40-0x7e.
		for i := 2; i < len(p); i++ {
			b := p[i]
			if b >= 0x40 && b <= 0x7e {
				return i + 1, true
			}
			if b < 0x20 || b > 0x3f {
				// Malformed; stop consuming at the offender.
				return i, true
			}
		}
		return 0, false
	case 'O':
		// SS3: exactly one byte follows.
		if len(p) < 3 {
			return 0, false
		}
		return 3, true
	default:
		// Alt-modified byte.
		return 2, true
	}
}
