package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/planner"
	"github.com/backmassage/rawreel/internal/tool"
)

// H264Encoder reads each frame in order, checks it decodes, and streams its
// bytes into ffmpeg (image2pipe → libx264 in MP4).
type H264Encoder struct {
	Base
}

// Encode implements Encoder.
func (e *H264Encoder) Encode(ctx context.Context, frames []string, fps int, out string) (Artifact, error) {
	size, err := Preflight(frames)
	if err != nil {
		return Artifact{}, err
	}
	st, err := fsx.Stage(out)
	if err != nil {
		return Artifact{}, err
	}
	log := e.log()
	log.Render("H.264: %d frames at %d fps → %s", len(frames), fps, filepath.Base(out))

	pr, pw := io.Pipe()
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- feed(ctx, pw, frames)
	}()

	args := ffmpeg.BuildPipeEncode(e.Opts, fps, planner.Settings(config.FormatH264), st.Temp)
	log.Debug("%s", tool.Command{Name: e.FFmpeg, Args: args})
	res := e.Runner.Run(ctx, tool.Command{Name: e.FFmpeg, Args: args, Stdin: pr, Tee: e.Tee})
	// Unblocks the feeder if ffmpeg exited before reading everything.
	_ = pr.Close()
	ferr := <-writeErr

	if ferr != nil && !errors.Is(ferr, io.ErrClosedPipe) {
		st.Discard()
		return Artifact{}, ferr
	}
	if err := ffmpeg.Check("encode "+filepath.Base(out), e.FFmpeg, res); err != nil {
		st.Discard()
		return Artifact{}, err
	}
	if ferr != nil {
		st.Discard()
		return Artifact{}, fmt.Errorf("encode %s: ffmpeg stopped reading frames", filepath.Base(out))
	}

	info, err := Finish(ctx, e.Prober, st, len(frames))
	if err != nil {
		return Artifact{}, err
	}
	a := Artifact{
		Path:   out,
		FPS:    fps,
		Format: config.FormatH264,
		Frames: len(frames),
		Width:  size.X,
		Height: size.Y,
	}
	if info != nil {
		a.Frames = info.Frames
	}
	return a, nil
}

// feed writes every frame to w in order and closes it. A frame that fails
// to decode aborts the stream with that error.
func feed(ctx context.Context, w *io.PipeWriter, frames []string) error {
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			w.CloseWithError(err)
			return err
		}
		b, err := os.ReadFile(f)
		if err != nil {
			err = fmt.Errorf("frame %d: %w", i, err)
			w.CloseWithError(err)
			return err
		}
		if _, err := jpeg.Decode(bytes.NewReader(b)); err != nil {
			err = fmt.Errorf("frame %d (%s): %w", i, f, err)
			w.CloseWithError(err)
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return w.Close()
}
