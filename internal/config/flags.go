package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into inputs, answers, tooling, display and utility.
// Negated flags (e.g. --no-grade) are applied after Parse so Config defaults hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ErrVersion is returned by ParseFlags when --version was requested.
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. It returns
// flag.ErrHelp after printing usage for --help and ErrVersion for --version;
// the caller decides how to exit.
func ParseFlags(cfg *Config, args []string, version string, stderr io.Writer) error {
	fs := flag.NewFlagSet("rawreel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var negated negatedFlags

	defineInputFlags(fs, cfg)
	defineAnswerFlags(fs, cfg, &negated)
	defineToolFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stderr, version)
		}
		return err
	}

	if negated.showHelp {
		printUsage(stderr, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		return ErrVersion
	}

	if err := applyNegatedFlags(cfg, &negated); err != nil {
		return err
	}
	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	reuse       bool
	reprocess   bool
	grade       bool
	noGrade     bool
	noProgress  bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineInputFlags registers -i/--input, --quality, --profile, --lut, --fps.
func defineInputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.InputDir, "input", cfg.InputDir, "Folder containing DNG frames")
	fs.StringVar(&cfg.InputDir, "i", cfg.InputDir, "Same as --input")
	fs.Var(&qualityValue{&cfg.Quality}, "quality", "Decode quality: full | half")
	fs.StringVar(&cfg.ProfileFile, "profile", cfg.ProfileFile, "YAML decode profile preset")
	fs.BoolVar(&cfg.CustomProfile, "custom-profile", false, "Ask for every decode profile field")
	fs.StringVar(&cfg.LUTPath, "lut", cfg.LUTPath, "3-D LUT (.cube) for grading")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "Output frame rate")
}

// defineAnswerFlags registers flags that pre-answer interactive questions.
func defineAnswerFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.reuse, "reuse", false, "Export from existing processed frames")
	fs.BoolVar(&n.reprocess, "reprocess", false, "Decode every frame again")
	fs.Var(&formatValue{&cfg.FlatFormat}, "flat-format", "Flat video format")
	fs.Var(&formatValue{&cfg.GradedFormat}, "graded-format", "Graded video format")
	fs.BoolVar(&n.grade, "grade", false, "Apply the LUT without asking")
	fs.BoolVar(&n.noGrade, "no-grade", false, "Skip grading")
	fs.BoolVar(&cfg.AssumeYes, "yes", false, "Answer every remaining question with its default")
	fs.BoolVar(&cfg.AssumeYes, "y", false, "Same as --yes")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel decode workers")
	fs.IntVar(&cfg.Workers, "j", cfg.Workers, "Same as --workers")
}

// defineToolFlags registers binary path overrides.
func defineToolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DcrawPath, "dcraw", cfg.DcrawPath, "dcraw binary")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&n.noProgress, "no-progress", false, "Hide the decode progress bar")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Debug log file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies paired boolean flags into tri-state fields.
func applyNegatedFlags(cfg *Config, n *negatedFlags) error {
	if n.reuse && n.reprocess {
		return errors.New("--reuse and --reprocess are mutually exclusive")
	}
	if n.grade && n.noGrade {
		return errors.New("--grade and --no-grade are mutually exclusive")
	}
	switch {
	case n.reuse:
		cfg.Reuse = ReuseExisting
	case n.reprocess:
		cfg.Reuse = ReuseReprocess
	}
	switch {
	case n.grade:
		cfg.Grade = ToggleYes
	case n.noGrade:
		cfg.Grade = ToggleNo
	}
	if n.noProgress {
		cfg.ShowProgress = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	return nil
}

// parsePositionalArgs accepts the input folder as an optional single
// positional argument (the --input flag wins if both are given).
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch {
	case len(args) > 1:
		return fmt.Errorf("expected at most one input folder, got %d arguments", len(args))
	case len(args) == 1 && cfg.InputDir == "":
		cfg.InputDir = args[0]
	}
	if cfg.InputDir != "" {
		cfg.InputDir = NormalizeDirArg(cfg.InputDir)
	}
	return nil
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "rawreel v" + version + " - DNG sequence to flat and graded video"},
		{"", ""},
		{"  rawreel [OPTIONS] [dng_folder]", ""},
		{"", ""},
		{"Inputs (asked interactively when omitted)", ""},
		{"  -i, --input <dir>", "Folder containing DNG frames"},
		{"  --quality <full|half>", "Decode resolution (default: ask)"},
		{"  --profile <file.yaml>", "Decode profile preset"},
		{"  --custom-profile", "Ask for every decode profile field"},
		{"  --lut <file.cube>", "3-D LUT for grading"},
		{"  --fps <n>", "Output frame rate (default: 24)"},
		{"", ""},
		{"Answers", ""},
		{"  --reuse | --reprocess", "Existing processed/ folder handling"},
		{"  --flat-format <fmt>", "mp4 | prores-{proxy,lt,422,hq}"},
		{"  --graded-format <fmt>", "mp4 | prores-{proxy,lt,422,hq}"},
		{"  --grade | --no-grade", "Apply the LUT or skip grading"},
		{"  -y, --yes", "Use defaults for all remaining questions"},
		{"  -j, --workers <n>", "Parallel decode workers (default: CPU count)"},
		{"", ""},
		{"Tools", ""},
		{"  --dcraw <path>", "dcraw binary (default: dcraw)"},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"", ""},
		{"Display", ""},
		{"  --color | --no-color", "Force or disable colored logs"},
		{"  --no-progress", "Hide the decode progress bar"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Debug log file (default: " + DefaultLogFile + ")"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (dcraw, ffmpeg, encoders, lut3d)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum types (Quality, VideoFormat) with flag.Var.

type qualityValue struct{ p *Quality }

func (q *qualityValue) String() string {
	if q.p == nil {
		return ""
	}
	return string(*q.p)
}

func (q *qualityValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "full":
		*q.p = QualityFull
	case "half":
		*q.p = QualityHalf
	default:
		return fmt.Errorf("invalid quality %q (use 'full' or 'half')", s)
	}
	return nil
}

type formatValue struct{ p *VideoFormat }

func (f *formatValue) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f *formatValue) Set(s string) error {
	v, err := ParseVideoFormat(s)
	if err != nil {
		return err
	}
	*f.p = v
	return nil
}
