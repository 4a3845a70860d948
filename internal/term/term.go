// Package term resolves ANSI color support and TTY detection.
//
// Colors live in a Palette value owned by whoever renders output (the
// logger, the banner) instead of package globals. A disabled Palette has
// empty strings everywhere, so concatenation is a no-op.
package term

import (
	"io"
	"os"
	"strings"

	"github.com/backmassage/rawreel/internal/config"
)

// Palette holds the escape sequences for each log color.
type Palette struct {
	Red     string
	Green   string
	Yellow  string
	Blue    string
	Cyan    string
	Magenta string
	NC      string // Reset sequence.
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool { return p.NC != "" }

// NewPalette resolves mode against out and returns the matching palette.
func NewPalette(mode config.ColorMode, out io.Writer) Palette {
	if !resolve(mode, out) {
		return Palette{}
	}
	return Palette{
		Red:     "\033[1;91m",
		Green:   "\033[1;92m",
		Yellow:  "\033[1;93m",
		Blue:    "\033[1;94m",
		Cyan:    "\033[1;96m",
		Magenta: "\033[1;95m",
		NC:      "\033[0m",
	}
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		f, ok := out.(*os.File)
		return ok && IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
