package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/planner"
	"github.com/backmassage/rawreel/internal/tool"
)

// ProResEncoder hands ffmpeg a numbered view of the frames and lets it read
// the sequence itself (prores_ks in MOV).
type ProResEncoder struct {
	Base
	Format config.VideoFormat // one of the prores-* formats
}

// Encode implements Encoder.
func (e *ProResEncoder) Encode(ctx context.Context, frames []string, fps int, out string) (Artifact, error) {
	size, err := Preflight(frames)
	if err != nil {
		return Artifact{}, err
	}

	seq, err := linkSequence(frames)
	if err != nil {
		return Artifact{}, err
	}
	defer os.RemoveAll(seq)

	st, err := fsx.Stage(out)
	if err != nil {
		return Artifact{}, err
	}
	log := e.log()
	log.Render("ProRes %s: %d frames at %d fps → %s", e.Format.Variant(), len(frames), fps, filepath.Base(out))

	args := ffmpeg.BuildSequenceEncode(e.Opts, filepath.Join(seq, ffmpeg.SequencePattern), fps, planner.Settings(e.Format), st.Temp)
	log.Debug("%s", tool.Command{Name: e.FFmpeg, Args: args})
	res := e.Runner.Run(ctx, tool.Command{Name: e.FFmpeg, Args: args, Tee: e.Tee})
	if err := ffmpeg.Check("encode "+filepath.Base(out), e.FFmpeg, res); err != nil {
		st.Discard()
		return Artifact{}, err
	}

	info, err := Finish(ctx, e.Prober, st, len(frames))
	if err != nil {
		return Artifact{}, err
	}
	a := Artifact{
		Path:   out,
		FPS:    fps,
		Format: e.Format,
		Frames: len(frames),
		Width:  size.X,
		Height: size.Y,
	}
	if info != nil {
		a.Frames = info.Frames
	}
	return a, nil
}

// linkSequence creates a temp dir holding 000000.jpg, 000001.jpg, ... that
// point at frames in order. Hard links are the fallback where symlinks are
// unavailable.
func linkSequence(frames []string) (string, error) {
	dir, err := os.MkdirTemp("", "rawreel-seq-")
	if err != nil {
		return "", fmt.Errorf("sequence dir: %w", err)
	}
	for i, f := range frames {
		abs, err := filepath.Abs(f)
		if err != nil {
			os.RemoveAll(dir)
			return "", err
		}
		name := filepath.Join(dir, fmt.Sprintf("%06d.jpg", i))
		if err := os.Symlink(abs, name); err != nil {
			if lerr := os.Link(abs, name); lerr != nil {
				os.RemoveAll(dir)
				return "", fmt.Errorf("link frame %d: %w", i, err)
			}
		}
	}
	return dir, nil
}
