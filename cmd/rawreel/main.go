// Command rawreel is the CLI entrypoint: it turns a folder of DNG frames
// into a flat video and, optionally, a LUT-graded copy.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check) or the interactive pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/rawreel/internal/assemble"
	"github.com/backmassage/rawreel/internal/check"
	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/decode"
	"github.com/backmassage/rawreel/internal/display"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/grade"
	"github.com/backmassage/rawreel/internal/logging"
	"github.com/backmassage/rawreel/internal/pipeline"
	"github.com/backmassage/rawreel/internal/probe"
	"github.com/backmassage/rawreel/internal/prompt"
	"github.com/backmassage/rawreel/internal/term"
	"github.com/backmassage/rawreel/internal/tool"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. Errors go straight to stderr until the logger exists.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "rawreel: %v\n", err)
		return 1
	}
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "rawreel: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, args, version, os.Stderr); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, config.ErrVersion):
			fmt.Printf("rawreel %s (%s)\n", version, commit)
			return 0
		}
		fmt.Fprintf(os.Stderr, "rawreel: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "rawreel: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rawreel: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout, log.Palette(), version)
	log.Debug("rawreel %s (%s), %d workers", version, commit, cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := check.New(&cfg)
	if cfg.CheckOnly {
		checker.RunCheck(ctx, log)
		return 0
	}
	if err := checker.CheckDeps(); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Wire the pipeline to the real tools.
	runner := tool.Exec{}
	prober := probe.NewProber(cfg.FFprobePath)
	opts := ffmpeg.Options{Verbose: cfg.Verbose}
	var tee io.Writer
	if cfg.Verbose {
		tee = os.Stderr
	}
	base := assemble.Base{
		FFmpeg: cfg.FFmpegPath,
		Runner: runner,
		Prober: prober,
		Opts:   opts,
		Tee:    tee,
		Log:    log.Stage("assemble"),
	}
	var progress io.Writer
	if cfg.ShowProgress && term.IsTerminal(os.Stdout) {
		progress = os.Stdout
	}

	o := pipeline.New(&cfg, log, pipeline.Options{
		Prompter: prompt.New(os.Stdin, os.Stdout),
		Decoder:  decode.NewDecoder(cfg.DcrawPath),
		NewEncoder: func(f config.VideoFormat) assemble.Encoder {
			return assemble.New(f, base)
		},
		Grader: &grade.Grader{
			FFmpeg: cfg.FFmpegPath,
			Runner: runner,
			Prober: prober,
			Opts:   opts,
			Tee:    tee,
			Log:    log.Stage("grade"),
		},
		Out:      os.Stdout,
		Progress: progress,
	})

	// Phase 4: Run. Any failure exits 1; declining a step is not a failure.
	stats, err := o.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Interrupted")
		} else {
			log.Error("%v", err)
		}
		return 1
	}
	log.Debug("frames=%d decoded=%d reused=%d stopped=%v elapsed=%s",
		stats.Frames, stats.Decoded, stats.Reused, stats.Stopped, display.FormatDuration(stats.Elapsed))
	return 0
}
