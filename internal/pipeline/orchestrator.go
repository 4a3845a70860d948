package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/backmassage/rawreel/internal/assemble"
	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/convert"
	"github.com/backmassage/rawreel/internal/decode"
	"github.com/backmassage/rawreel/internal/display"
	"github.com/backmassage/rawreel/internal/logging"
	"github.com/backmassage/rawreel/internal/lut"
	"github.com/backmassage/rawreel/internal/prompt"
)

// State is a step of the run.
type State int

const (
	StateCollectInputs State = iota
	StateDecodeOrReuse
	StateAssembleFlat
	StateGradeOrSkip
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollectInputs:
		return "collect-inputs"
	case StateDecodeOrReuse:
		return "decode"
	case StateAssembleFlat:
		return "assemble"
	case StateGradeOrSkip:
		return "grade"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrNoInputDir is returned when no input folder was given.
	ErrNoInputDir = errors.New("no input folder provided")
	// ErrNoFrames is returned when the input folder holds no DNG files.
	ErrNoFrames = errors.New("no DNG files found")
	// ErrFramesFailed is returned when any frame failed to decode; assembly
	// never runs on an incomplete sequence.
	ErrFramesFailed = errors.New("frames failed to decode")
)

// Grader applies a LUT to a flat artifact. *grade.Grader satisfies it.
type Grader interface {
	Grade(ctx context.Context, flat assemble.Artifact, t *lut.Table, f config.VideoFormat, out string) (assemble.Artifact, error)
}

// Options carries the collaborators of an Orchestrator.
type Options struct {
	Prompter   *prompt.Prompter
	Decoder    convert.FrameDecoder
	NewEncoder func(config.VideoFormat) assemble.Encoder
	Grader     Grader
	// Out receives the final summary table; nil discards it.
	Out io.Writer
	// Progress receives bars and spinners; nil disables them.
	Progress io.Writer
}

// Orchestrator runs the states in order. It is single-use.
type Orchestrator struct {
	cfg  config.Config
	log  *logging.Logger
	opts Options

	state   State
	profile decode.Profile
	sources []string
	frames  []string
	lutPath string
	fps     int
	stats   RunStats
}

// New returns an Orchestrator over a copy of cfg. Answers already present in
// cfg are not asked again.
func New(cfg *config.Config, log *logging.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = logging.Discard()
	}
	return &Orchestrator{cfg: *cfg, log: log, opts: opts, profile: cfg.Profile}
}

// State reports where the run currently is.
func (o *Orchestrator) State() State { return o.state }

// Run drives the states to completion. A declined step ends the run with a
// nil error and the returned RunStats.Stopped set.
func (o *Orchestrator) Run(ctx context.Context) (RunStats, error) {
	start := time.Now()
	defer func() { o.stats.Elapsed = time.Since(start) }()

	for o.state != StateDone {
		if err := ctx.Err(); err != nil {
			return o.stats, err
		}
		var next State
		var err error
		switch o.state {
		case StateCollectInputs:
			next, err = o.collectInputs()
		case StateDecodeOrReuse:
			next, err = o.decodeOrReuse(ctx)
		case StateAssembleFlat:
			next, err = o.assembleFlat(ctx)
		case StateGradeOrSkip:
			next, err = o.gradeOrSkip(ctx)
		default:
			return o.stats, fmt.Errorf("unknown state %v", o.state)
		}
		if err != nil {
			return o.stats, fmt.Errorf("%v: %w", o.state, err)
		}
		o.log.Debug("state %v -> %v", o.state, next)
		o.state = next
	}
	o.stats.Elapsed = time.Since(start)
	o.finish()
	return o.stats, nil
}

// stop ends the run cleanly after the user declined a step.
func (o *Orchestrator) stop(msg string) (State, error) {
	o.log.Info("%s", msg)
	o.stats.Stopped = true
	return StateDone, nil
}

func (o *Orchestrator) finish() {
	if o.stats.Flat == nil {
		return
	}
	fmt.Fprintln(o.out())
	PrintSummary(o.out(), &o.stats)
	if o.stats.Graded != nil {
		o.log.Success("Done! '%s' and '%s' were created in your input folder.",
			baseNoExt(o.stats.Flat.Path), baseNoExt(o.stats.Graded.Path))
	} else {
		o.log.Success("Done! '%s' was created in your input folder.", baseNoExt(o.stats.Flat.Path))
	}
	o.log.Info("Total time: %s", display.FormatDuration(o.stats.Elapsed))
}

func (o *Orchestrator) out() io.Writer {
	if o.opts.Out == nil {
		return io.Discard
	}
	return o.opts.Out
}

// spin runs fn under a spinner when progress output is enabled.
func (o *Orchestrator) spin(desc string, fn func() error) error {
	if o.opts.Progress == nil {
		return fn()
	}
	s := display.StartSpinner(o.opts.Progress, desc)
	defer s.Stop()
	return fn()
}
