// Package grade applies a 3-D LUT to a flat video through ffmpeg's lut3d
// filter. The graded artifact keeps the flat artifact's frame rate and frame
// count; both are verified before the output is published.
package grade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/backmassage/rawreel/internal/assemble"
	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/logging"
	"github.com/backmassage/rawreel/internal/lut"
	"github.com/backmassage/rawreel/internal/planner"
	"github.com/backmassage/rawreel/internal/probe"
	"github.com/backmassage/rawreel/internal/tool"
)

// ErrNoTable is returned when Grade is called without a loaded LUT.
var ErrNoTable = errors.New("no LUT loaded")

// FPSMismatchError reports a graded output whose frame rate drifted.
type FPSMismatchError struct {
	Path string
	Want int
	Got  float64
}

func (e *FPSMismatchError) Error() string {
	return fmt.Sprintf("%s runs at %.3f fps, expected %d", e.Path, e.Got, e.Want)
}

// Grader runs the lut3d pass.
type Grader struct {
	FFmpeg string
	Runner tool.Runner
	Prober assemble.Prober
	Opts   ffmpeg.Options
	Tee    io.Writer
	Log    *logging.Logger
}

// Grade writes flat graded by table to out in format f.
func (g *Grader) Grade(ctx context.Context, flat assemble.Artifact, table *lut.Table, f config.VideoFormat, out string) (assemble.Artifact, error) {
	if table == nil {
		return assemble.Artifact{}, ErrNoTable
	}
	if err := fsx.CheckNonEmpty(flat.Path); err != nil {
		return assemble.Artifact{}, fmt.Errorf("flat video: %w", err)
	}
	log := g.Log
	if log == nil {
		log = logging.Discard()
	}

	st, err := fsx.Stage(out)
	if err != nil {
		return assemble.Artifact{}, err
	}
	log.Render("lut3d %s: %s → %s", table.Summary(), filepath.Base(flat.Path), filepath.Base(out))

	args := ffmpeg.BuildGrade(g.Opts, flat.Path, table.Path, flat.FPS, planner.Settings(f), st.Temp)
	log.Debug("%s", tool.Command{Name: g.FFmpeg, Args: args})
	res := g.Runner.Run(ctx, tool.Command{Name: g.FFmpeg, Args: args, Tee: g.Tee})
	if err := ffmpeg.Check("grade "+filepath.Base(out), g.FFmpeg, res); err != nil {
		st.Discard()
		return assemble.Artifact{}, err
	}

	info, err := assemble.Finish(ctx, g.Prober, st, flat.Frames, func(info *probe.VideoInfo) error {
		if !info.MatchesFPS(flat.FPS) {
			return &FPSMismatchError{Path: out, Want: flat.FPS, Got: info.FrameRate}
		}
		return nil
	})
	if err != nil {
		return assemble.Artifact{}, err
	}

	a := flat
	a.Path = out
	a.Format = f
	a.Graded = true
	if info != nil {
		a.Frames = info.Frames
	}
	return a, nil
}
