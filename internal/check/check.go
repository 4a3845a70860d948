// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for dcraw, ffmpeg, ffprobe and the
// encoders and filter rawreel drives: libx264, prores_ks and lut3d.
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/tool"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrDcrawNotFound   = errors.New("dcraw not found on PATH")
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrEncoderFailed   = errors.New("test encode failed")
	ErrNoLUT3D         = errors.New("ffmpeg has no lut3d filter")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Checker probes the configured binaries.
type Checker struct {
	Dcraw    string
	FFmpeg   string
	FFprobe  string
	FFplay   string
	Runner   tool.Runner
	LookPath func(string) (string, error)
}

// New returns a Checker for the binaries in cfg.
func New(cfg *config.Config) *Checker {
	return &Checker{
		Dcraw:    cfg.DcrawPath,
		FFmpeg:   cfg.FFmpegPath,
		FFprobe:  cfg.FFprobePath,
		FFplay:   cfg.FFplayPath,
		Runner:   tool.Exec{},
		LookPath: exec.LookPath,
	}
}

// RunCheck runs the interactive --check flow: prints availability of every
// binary, test-encodes with libx264 and prores_ks, and looks for lut3d.
// This is informational only; it does not stop on failure.
func (c *Checker) RunCheck(ctx context.Context, log Logger) {
	log.Info("=== System Check ===")

	c.checkDcraw(ctx, log)
	c.checkVersion(ctx, log, c.FFmpeg)
	c.checkVersion(ctx, log, c.FFprobe)
	if _, err := c.LookPath(c.FFplay); err != nil {
		log.Warn("%s not found (reelplay previews unavailable)", c.FFplay)
	} else {
		log.Success("%s found", c.FFplay)
	}

	for _, codec := range []string{"libx264", "prores_ks"} {
		log.Info("Testing %s...", codec)
		if err := c.TestEncoder(ctx, codec); err != nil {
			log.Error("%v", err)
		} else {
			log.Success("%s works", codec)
		}
	}
	if err := c.HasLUT3D(ctx); err != nil {
		log.Error("%v", err)
	} else {
		log.Success("lut3d filter available")
	}
}

// checkDcraw reports the dcraw banner. dcraw prints its usage (with the
// version on the first line) and exits non-zero when run without files.
func (c *Checker) checkDcraw(ctx context.Context, log Logger) {
	if _, err := c.LookPath(c.Dcraw); err != nil {
		log.Error("%s not found", c.Dcraw)
		return
	}
	var out bytes.Buffer
	res := c.Runner.Run(ctx, tool.Command{Name: c.Dcraw, Stdout: &out})
	line := firstLine(out.String())
	if line == "" {
		line = firstLine(res.Stderr)
	}
	if line == "" {
		log.Success("dcraw: found")
		return
	}
	log.Success("dcraw: %s", line)
}

// checkVersion verifies name is on PATH and logs its version string.
func (c *Checker) checkVersion(ctx context.Context, log Logger, name string) {
	if _, err := c.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return
	}
	var out bytes.Buffer
	res := c.Runner.Run(ctx, tool.Command{Name: name, Args: []string{"-version"}, Stdout: &out})
	if res.Err != nil {
		log.Warn("%s found but -version failed: %v", name, res.Err)
		return
	}
	log.Success("%s", firstLine(out.String()))
}

// CheckDeps is the pre-pipeline validation: every required binary must be
// on PATH. Encoders are tested only in --check mode since which one is
// needed is not known until the user picks a format.
func (c *Checker) CheckDeps() error {
	for _, dep := range []struct {
		bin string
		err error
	}{
		{c.Dcraw, ErrDcrawNotFound},
		{c.FFmpeg, ErrFfmpegNotFound},
		{c.FFprobe, ErrFfprobeNotFound},
	} {
		if _, err := c.LookPath(dep.bin); err != nil {
			return fmt.Errorf("%w (%s)", dep.err, dep.bin)
		}
	}
	return nil
}

// TestEncoder runs a minimal lavfi encode with codec.
func (c *Checker) TestEncoder(ctx context.Context, codec string) error {
	res := c.Runner.Run(ctx, tool.Command{Name: c.FFmpeg, Args: encoderTestArgs(codec)})
	if res.Err != nil {
		return fmt.Errorf("%s: %w: %s", codec, ErrEncoderFailed, tool.Tail(res.Stderr, 1))
	}
	return nil
}

// HasLUT3D checks ffmpeg's filter list for lut3d.
func (c *Checker) HasLUT3D(ctx context.Context) error {
	var out bytes.Buffer
	res := c.Runner.Run(ctx, tool.Command{Name: c.FFmpeg, Args: []string{"-hide_banner", "-filters"}, Stdout: &out})
	if res.Err != nil {
		return fmt.Errorf("list filters: %w", res.AsError(c.FFmpeg))
	}
	for _, line := range strings.Split(out.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "lut3d" {
			return nil
		}
	}
	return ErrNoLUT3D
}

// encoderTestArgs returns the ffmpeg arguments for a minimal test encode.
func encoderTestArgs(codec string) []string {
	pixFmt := "yuv420p"
	if codec == "prores_ks" {
		pixFmt = "yuv422p10le"
	}
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec, "-pix_fmt", pixFmt,
		"-f", "null", "-",
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
