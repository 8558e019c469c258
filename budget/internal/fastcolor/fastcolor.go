// Package fastcolor writes ANSI colored, fixed width cells without
// allocating per cell.
package fastcolor

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an ANSI escape sequence that is written before a cell and
// followed by a reset.
type Color string

const (
	Reset   Color = "\x1b[0m"
	Bold    Color = "\x1b[1m"
	FgRed   Color = "\x1b[31m"
	FgGreen Color = "\x1b[32m"
	FgBlue  Color = "\x1b[34m"
)

var enabled = true

// SetEnabled turns escape output on or off for every Color.
func SetEnabled(on bool) {
	enabled = on
}

// Enabled reports whether escapes are written.
func Enabled() bool {
	return enabled
}

// Hex returns a 24-bit foreground color for a "#rrggbb" string.
func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Reset, err
	}
	r, g, b := c.RGB255()
	var sb strings.Builder
	sb.WriteString("\x1b[38;2;")
	writeUint(&sb, r)
	sb.WriteByte(';')
	writeUint(&sb, g)
	sb.WriteByte(';')
	writeUint(&sb, b)
	sb.WriteByte('m')
	return Color(sb.String()), nil
}

func writeUint(sb *strings.Builder, v uint8) {
	if v >= 100 {
		sb.WriteByte('0' + v/100)
	}
	if v >= 10 {
		sb.WriteByte('0' + v/10%10)
	}
	sb.WriteByte('0' + v%10)
}

const spaces = "                                                                                "

func pad(w io.StringWriter, n int) {
	for n > 0 {
		k := min(n, len(spaces))
		w.WriteString(spaces[:k])
		n -= k
	}
}

// WriteStringFixed writes s in a cell exactly width runes wide, truncating
// or padding as needed.
func (c Color) WriteStringFixed(w io.StringWriter, s string, width int, alignRight bool) {
	if width <= 0 {
		return
	}
	if n := utf8.RuneCountInString(s); n > width {
		i, count := 0, 0
		for i = range s {
			if count == width {
				break
			}
			count++
		}
		s = s[:i]
	}
	fill := width - utf8.RuneCountInString(s)

	if enabled && c != Reset {
		w.WriteString(string(c))
	}
	if alignRight {
		pad(w, fill)
	}
	w.WriteString(s)
	if !alignRight {
		pad(w, fill)
	}
	if enabled && c != Reset {
		w.WriteString(string(Reset))
	}
}
