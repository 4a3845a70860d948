package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/rawreel/internal/assemble"
	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/convert"
	"github.com/backmassage/rawreel/internal/display"
	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/lut"
	"github.com/backmassage/rawreel/internal/naming"
	"github.com/backmassage/rawreel/internal/planner"
)

// decodeOrReuse fills processed/ with one JPEG per source. An existing
// processed/ folder may be reused; only missing or empty intermediates are
// decoded again.
func (o *Orchestrator) decodeOrReuse(ctx context.Context) (State, error) {
	log := o.log.Stage("decode")
	processed := naming.ProcessedDir(o.cfg.InputDir)

	reuse := false
	if fsx.Exists(processed) {
		var err error
		if reuse, err = o.reuseExisting(); err != nil {
			return 0, err
		}
	}
	if err := os.MkdirAll(processed, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", processed, err)
	}

	outputs := naming.IntermediatePaths(processed, o.sources)
	plans, err := planner.BuildFramePlans(o.sources, outputs, reuse)
	if err != nil {
		return 0, err
	}
	toDecode, toReuse := planner.Count(plans)
	switch {
	case toDecode == 0:
		log.Info("Reusing all %d intermediates in %s", toReuse, processed)
	case toReuse > 0:
		log.Info("Decoding %d frames, reusing %d", toDecode, toReuse)
	default:
		log.Info("Decoding %d frames with %d workers", toDecode, o.cfg.Workers)
	}

	driver := &convert.Driver{Decoder: o.opts.Decoder, Workers: o.cfg.Workers, Log: log}
	progress := make(chan convert.Progress, o.cfg.Workers)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		if o.opts.Progress != nil && toDecode > 0 {
			display.NewFrameBar(o.opts.Progress, len(plans), "Decoding").Drain(progress)
			return
		}
		for p := range progress {
			log.Debug("%d/%d %s", p.Done, p.Total, filepath.Base(p.Frame))
		}
	}()

	start := time.Now()
	report := driver.Run(ctx, plans, o.profile, progress)
	<-drained
	o.stats.DecodeTime = time.Since(start)
	o.stats.Decoded = toDecode - report.Failed()
	o.stats.Reused = toReuse
	o.stats.Failed = report.Failed()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if report.Failed() > 0 {
		if report.AllFailed() {
			log.Error("Every frame failed to decode")
		}
		log.Error("%d of %d frames failed", report.Failed(), report.Total())
		return 0, fmt.Errorf("%w: %w", ErrFramesFailed, report.Err())
	}
	log.Success("Intermediates ready in %s", display.FormatDuration(o.stats.DecodeTime))
	o.frames = report.Outputs()
	return StateAssembleFlat, nil
}

func (o *Orchestrator) reuseExisting() (bool, error) {
	switch o.cfg.Reuse {
	case config.ReuseExisting:
		return true, nil
	case config.ReuseReprocess:
		return false, nil
	}
	if o.cfg.AssumeYes {
		return true, nil
	}
	ans, err := o.opts.Prompter.Choice(
		"Processed folder already exists. Reprocess full DNGs (r) or export videos from existing JPEGs (e)?",
		[]string{"r", "e"})
	if err != nil {
		return false, err
	}
	return ans == "e", nil
}

// assembleFlat encodes the intermediates into flat_video.
func (o *Orchestrator) assembleFlat(ctx context.Context) (State, error) {
	log := o.log.Stage("assemble")
	if !o.cfg.AssumeYes {
		ok, err := o.opts.Prompter.YesNo("Proceed with creating a flat video from the processed images?")
		if err != nil {
			return 0, err
		}
		if !ok {
			return o.stop("Flat video creation skipped. Exiting.")
		}
	}

	format, err := o.videoFormat("flat video", o.cfg.FlatFormat)
	if err != nil {
		return 0, err
	}
	out := naming.ArtifactPath(o.cfg.InputDir, false, format)

	if size, err := assemble.Preflight(o.frames); err == nil {
		est := planner.EstimateSize(format, size.X, size.Y, o.fps, len(o.frames))
		if est.Known {
			log.Info("%dx%d, %s, about %s (%s)", size.X, size.Y, display.FormatRuntime(len(o.frames), o.fps),
				display.FormatBytes(est.Bytes), display.FormatBitrateLabel(int64(est.Kbps)))
		}
	}

	log.Render("Encoding %s", filepath.Base(out))
	var flat assemble.Artifact
	err = o.spin("Encoding flat video", func() error {
		var err error
		flat, err = o.opts.NewEncoder(format).Encode(ctx, o.frames, o.fps, out)
		return err
	})
	if err != nil {
		return 0, err
	}
	o.stats.Flat = &flat
	log.Success("Created %s", flat.Path)
	return StateGradeOrSkip, nil
}

// gradeOrSkip applies the LUT to the flat video when the user wants it.
func (o *Orchestrator) gradeOrSkip(ctx context.Context) (State, error) {
	log := o.log.Stage("grade")
	if o.cfg.Grade == config.ToggleNo {
		return o.stop("LUT step skipped.")
	}

	format, err := o.videoFormat("LUT applied video", o.cfg.GradedFormat)
	if err != nil {
		return 0, err
	}
	if o.cfg.Grade != config.ToggleYes && !o.cfg.AssumeYes {
		ok, err := o.opts.Prompter.YesNo("Apply LUT to the flat video?")
		if err != nil {
			return 0, err
		}
		if !ok {
			return o.stop("LUT application skipped. Exiting.")
		}
	}

	table, err := lut.Load(o.lutPath)
	if err != nil {
		if errors.Is(err, lut.ErrNotFound) {
			log.Error("LUT file not found: %s", o.lutPath)
		}
		return 0, err
	}
	log.Info("Using LUT %s", table.Summary())

	out := naming.ArtifactPath(o.cfg.InputDir, true, format)
	log.Render("Grading %s -> %s", filepath.Base(o.stats.Flat.Path), filepath.Base(out))
	var graded assemble.Artifact
	err = o.spin("Applying LUT", func() error {
		var err error
		graded, err = o.opts.Grader.Grade(ctx, *o.stats.Flat, table, format, out)
		return err
	})
	if err != nil {
		return 0, err
	}
	o.stats.Graded = &graded
	log.Success("Created %s", graded.Path)
	return StateDone, nil
}
