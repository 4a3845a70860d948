// Package config holds runtime configuration: defaults, environment and CLI
// flag parsing, and validation. Defaults reproduce the classic interactive
// DNG workflow; every value left blank here is asked for interactively.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/backmassage/rawreel/internal/decode"
)

// --- Enum types for validated string fields ---

// Quality selects full- or half-resolution RAW development.
type Quality string

const (
	QualityFull Quality = "full"
	QualityHalf Quality = "half"
)

// VideoFormat is the codec/container of a produced video.
type VideoFormat string

const (
	FormatH264        VideoFormat = "mp4"          // H.264 in MP4.
	FormatProResProxy VideoFormat = "prores-proxy" // ProRes 422 Proxy in MOV.
	FormatProResLT    VideoFormat = "prores-lt"    // ProRes 422 LT.
	FormatProRes422   VideoFormat = "prores-422"   // ProRes 422.
	FormatProResHQ    VideoFormat = "prores-hq"    // ProRes 422 HQ.
)

// IsProRes reports whether f is one of the ProRes variants.
func (f VideoFormat) IsProRes() bool {
	return strings.HasPrefix(string(f), "prores-")
}

// Ext returns the container extension including the dot.
func (f VideoFormat) Ext() string {
	if f.IsProRes() {
		return ".mov"
	}
	return ".mp4"
}

// Variant returns the ProRes variant name ("proxy", "lt", "422", "hq"), or "".
func (f VideoFormat) Variant() string {
	return strings.TrimPrefix(string(f), "prores-")
}

// ParseVideoFormat accepts "mp4", "h264", "prores" (HQ), "prores-<variant>" or
// a bare variant name.
func ParseVideoFormat(s string) (VideoFormat, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "mp4", "h264":
		return FormatH264, nil
	case "prores":
		return FormatProResHQ, nil
	}
	v = strings.TrimPrefix(v, "prores-")
	switch v {
	case "proxy", "lt", "422", "hq":
		return VideoFormat("prores-" + v), nil
	}
	return "", fmt.Errorf("invalid video format %q (use mp4, prores-proxy, prores-lt, prores-422 or prores-hq)", s)
}

// ReuseMode decides what happens when a processed/ directory already exists.
type ReuseMode string

const (
	ReuseAsk       ReuseMode = ""          // Prompt.
	ReuseExisting  ReuseMode = "reuse"     // Export from existing intermediates.
	ReuseReprocess ReuseMode = "reprocess" // Decode every frame again.
)

// Toggle is a tri-state answer: ask, yes, no.
type Toggle string

const (
	ToggleAsk Toggle = ""
	ToggleYes Toggle = "yes"
	ToggleNo  Toggle = "no"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultLUTPath is offered at the LUT prompt when nothing else is configured.
const DefaultLUTPath = "/home/pi/cinemate/resources/LUTs/LUT_ROMEO&JULIETTE.cube"

// DefaultFPS is the frame rate offered at the FPS prompt.
const DefaultFPS = 24

// DefaultLogFile is the debug log written next to the working directory.
const DefaultLogFile = "rawreel_debug.log"

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// [ApplyEnv], then [ParseFlags]. Zero values in the "answers" group mean
// "ask the user"; AssumeYes turns every remaining question into its default.
type Config struct {
	// Answers (blank = prompt).
	InputDir      string
	Quality       Quality
	ProfileFile   string // YAML decode preset; skips the profile questions.
	CustomProfile bool   // Ask per-field profile questions instead of "use defaults?".
	LUTPath       string
	FPS           int
	Reuse         ReuseMode
	FlatFormat    VideoFormat
	GradedFormat  VideoFormat
	Grade         Toggle
	AssumeYes     bool

	// Profile is resolved during input collection; Validate checks it when set.
	Profile decode.Profile

	// Execution.
	Workers int // Default: runtime.NumCPU().

	// External binaries.
	DcrawPath   string // Default: "dcraw".
	FFmpegPath  string // Default: "ffmpeg".
	FFprobePath string // Default: "ffprobe".
	FFplayPath  string // Default: "ffplay".

	// Display and logging.
	Verbose      bool
	ShowProgress bool      // Default: true.
	ColorMode    ColorMode // Default: "auto".
	LogFile      string    // Default: "rawreel_debug.log".
	CheckOnly    bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config whose answers are all blank (interactive) and
// whose tooling points at binaries on PATH.
func DefaultConfig() Config {
	return Config{
		Profile:      decode.DefaultProfile(),
		Workers:      runtime.NumCPU(),
		DcrawPath:    "dcraw",
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		FFplayPath:   "ffplay",
		ShowProgress: true,
		ColorMode:    ColorAuto,
		LogFile:      DefaultLogFile,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks every preset enum and numeric field. Blank answers are
// accepted; they are filled in later by the interactive flow.
func (c *Config) Validate() error {
	switch c.Quality {
	case "", QualityFull, QualityHalf:
	default:
		return fmt.Errorf("invalid quality %q (use 'full' or 'half')", c.Quality)
	}
	for _, f := range []VideoFormat{c.FlatFormat, c.GradedFormat} {
		if f == "" {
			continue
		}
		if _, err := ParseVideoFormat(string(f)); err != nil {
			return err
		}
	}
	switch c.Reuse {
	case ReuseAsk, ReuseExisting, ReuseReprocess:
	default:
		return fmt.Errorf("invalid reuse mode %q", c.Reuse)
	}
	switch c.Grade {
	case ToggleAsk, ToggleYes, ToggleNo:
	default:
		return fmt.Errorf("invalid grade answer %q", c.Grade)
	}
	if c.FPS < 0 || c.FPS > 240 {
		return fmt.Errorf("invalid FPS %d (1-240)", c.FPS)
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.ProfileFile != "" && c.CustomProfile {
		return errors.New("--profile and --custom-profile are mutually exclusive")
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	for name, bin := range map[string]string{"dcraw": c.DcrawPath, "ffmpeg": c.FFmpegPath, "ffprobe": c.FFprobePath} {
		if strings.TrimSpace(bin) == "" {
			return fmt.Errorf("%s path must not be empty", name)
		}
	}
	return nil
}

// HalfSize maps Quality onto the decode profile's half-resolution flag.
func (q Quality) HalfSize() bool { return q != QualityFull }
