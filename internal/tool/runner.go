// Package tool runs external command-line collaborators (dcraw, ffmpeg,
// ffprobe, ffplay) behind a small Runner interface so stages can be tested
// without the binaries installed.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command describes one subprocess invocation. Stdin, Stdout and Tee are
// optional; stderr is always captured into Result.Stderr.
type Command struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Tee    io.Writer // receives a live copy of stderr (e.g. os.Stderr when verbose)
}

// String renders the command line for debug logs.
func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the outcome of a single invocation.
type Result struct {
	Stderr string
	Err    error
}

// Runner executes commands. Implementations must honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, c Command) Result
}

// Exec is the os/exec backed Runner.
type Exec struct{}

// Run starts c and waits for it to exit.
func (Exec) Run(ctx context.Context, c Command) Result {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	var stderrBuf bytes.Buffer
	if c.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, c.Tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return Result{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// Error reports a failed external tool run with the tail of its stderr.
type Error struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	tail := Tail(e.Stderr, 3)
	if tail == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, strings.ReplaceAll(tail, "\n", " | "))
}

func (e *Error) Unwrap() error { return e.Err }

// AsError converts a failed Result into an *Error; nil when the run succeeded.
func (r Result) AsError(name string) error {
	if r.Err == nil {
		return nil
	}
	return &Error{Tool: name, Stderr: r.Stderr, Err: r.Err}
}

// Tail returns the last n non-empty lines of s.
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(out) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			out = append(out, l)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return strings.Join(out, "\n")
}
