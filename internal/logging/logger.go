// Package logging provides the leveled console logger and the debug log file.
//
// Every run gets a short correlation id written on each file line so
// interleaved runs in the same log can be told apart. Stage-scoped loggers
// (see Logger.Stage) share the same sinks and are handed to each pipeline
// stage explicitly.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/term"
)

// sink is shared by a root Logger and all its Stage children.
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	palette term.Palette
	verbose bool
	runID   string
}

// Logger provides leveled, optionally colored logging with a debug file sink.
// Console output shows INFO and above (DEBUG only when verbose); the file
// records every level.
type Logger struct {
	s     *sink
	stage string
}

// Options configures New. Zero Out/Err default to os.Stdout/os.Stderr.
type Options struct {
	Out     io.Writer
	Err     io.Writer
	File    string
	Color   config.ColorMode
	Verbose bool
}

// NewLogger builds the process logger from cfg. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return New(Options{
		File:    cfg.LogFile,
		Color:   cfg.ColorMode,
		Verbose: cfg.Verbose,
	})
}

// New builds a logger from explicit options.
func New(opts Options) (*Logger, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	s := &sink{
		out:     opts.Out,
		errOut:  opts.Err,
		palette: term.NewPalette(opts.Color, opts.Out),
		verbose: opts.Verbose,
		runID:   uuid.NewString()[:8],
	}

	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		s.file = f
	}
	return &Logger{s: s}, nil
}

// Discard returns a logger that writes nowhere; handy in tests.
func Discard() *Logger {
	return &Logger{s: &sink{out: io.Discard, errOut: io.Discard, runID: "discard"}}
}

// Stage returns a logger whose lines are tagged with name.
func (l *Logger) Stage(name string) *Logger {
	return &Logger{s: l.s, stage: name}
}

// RunID is the correlation id written on every file line.
func (l *Logger) RunID() string { return l.s.runID }

// Verbose reports whether DEBUG lines reach the console.
func (l *Logger) Verbose() bool { return l.s.verbose }

// Palette exposes the resolved colors for other renderers.
func (l *Logger) Palette() term.Palette { return l.s.palette }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.file != nil {
		err := l.s.file.Close()
		l.s.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, color, text string, console bool) {
	now := time.Now()
	tag := ""
	if l.stage != "" {
		tag = "[" + l.stage + "] "
	}
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if console {
		out := s.out
		if level == "ERROR" {
			out = s.errOut
		}
		ts := now.Format("15:04:05")
		if color != "" {
			_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+s.palette.NC+" "+tag+text+"\n")
		} else {
			_, _ = io.WriteString(out, ts+" ["+level+"] "+tag+text+"\n")
		}
	}
	if s.file != nil {
		_, _ = fmt.Fprintf(s.file, "%s [%s] [run=%s] %s%s\n",
			now.Format("2006-01-02 15:04:05"), level, s.runID, tag, text)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", l.s.palette.Blue, fmt.Sprintf(format, args...), true)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", l.s.palette.Green, fmt.Sprintf(format, args...), true)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", l.s.palette.Yellow, fmt.Sprintf(format, args...), true)
}

// Error logs at ERROR level (red), also to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", l.s.palette.Red, fmt.Sprintf(format, args...), true)
}

// Render logs at RENDER level (magenta); used for encoder/transcode steps.
func (l *Logger) Render(format string, args ...interface{}) {
	l.line("RENDER", l.s.palette.Magenta, fmt.Sprintf(format, args...), true)
}

// Debug always reaches the log file and reaches the console only when verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.line("DEBUG", l.s.palette.Cyan, fmt.Sprintf(format, args...), l.s.verbose)
}
