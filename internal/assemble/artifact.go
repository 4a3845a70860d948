package assemble

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // registers the JPEG decoder for image.DecodeConfig
	"io"
	"os"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/logging"
	"github.com/backmassage/rawreel/internal/probe"
	"github.com/backmassage/rawreel/internal/tool"
)

// ErrEmptySequence is returned when there are no frames to assemble.
var ErrEmptySequence = errors.New("no frames to assemble")

// Artifact is a produced video file.
type Artifact struct {
	Path   string
	FPS    int
	Format config.VideoFormat
	Graded bool
	Frames int
	Width  int
	Height int
}

// Encoder assembles frames, in the given order, into a video at fps.
type Encoder interface {
	Encode(ctx context.Context, frames []string, fps int, out string) (Artifact, error)
}

// Prober verifies a produced file. *probe.Prober satisfies it.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.VideoInfo, error)
}

// DimensionMismatchError reports a frame whose size differs from the first.
type DimensionMismatchError struct {
	Frame string
	Index int
	Want  image.Point
	Got   image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("frame %d (%s) is %dx%d, expected %dx%d",
		e.Index, e.Frame, e.Got.X, e.Got.Y, e.Want.X, e.Want.Y)
}

// CountMismatchError reports an output whose counted frames differ from the
// number of frames that went in.
type CountMismatchError struct {
	Path string
	Want int
	Got  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("%s has %d frames, expected %d", e.Path, e.Got, e.Want)
}

// Base holds what both backends share.
type Base struct {
	FFmpeg string // ffmpeg executable
	Runner tool.Runner
	Prober Prober
	Opts   ffmpeg.Options
	Tee    io.Writer // live copy of ffmpeg stderr; nil for none
	Log    *logging.Logger
}

func (b *Base) log() *logging.Logger {
	if b.Log == nil {
		return logging.Discard()
	}
	return b.Log
}

// New selects the backend for f.
func New(f config.VideoFormat, b Base) Encoder {
	if f.IsProRes() {
		return &ProResEncoder{Base: b, Format: f}
	}
	return &H264Encoder{Base: b}
}

// Preflight checks the sequence without decoding pixel data: it must be
// non-empty and every frame must share the first frame's dimensions.
func Preflight(frames []string) (image.Point, error) {
	if len(frames) == 0 {
		return image.Point{}, ErrEmptySequence
	}
	var want image.Point
	for i, f := range frames {
		size, err := frameSize(f)
		if err != nil {
			return image.Point{}, fmt.Errorf("frame %d: %w", i, err)
		}
		if i == 0 {
			want = size
			continue
		}
		if size != want {
			return image.Point{}, &DimensionMismatchError{Frame: f, Index: i, Want: want, Got: size}
		}
	}
	return want, nil
}

func frameSize(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, fmt.Errorf("read %s: %w", path, err)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

// Finish verifies a staged ffmpeg output and publishes it: the file must be
// non-empty and, when p is set, contain exactly want frames and pass every
// extra check. The staged file is removed on any failure.
func Finish(ctx context.Context, p Prober, st *fsx.Staged, want int, checks ...func(*probe.VideoInfo) error) (*probe.VideoInfo, error) {
	if err := fsx.CheckNonEmpty(st.Temp); err != nil {
		st.Discard()
		return nil, err
	}
	var info *probe.VideoInfo
	if p != nil {
		var err error
		info, err = p.Probe(ctx, st.Temp)
		if err != nil {
			st.Discard()
			return nil, fmt.Errorf("verify %s: %w", st.Final, err)
		}
		if info.Frames != want {
			st.Discard()
			return nil, &CountMismatchError{Path: st.Final, Want: want, Got: info.Frames}
		}
		for _, check := range checks {
			if err := check(info); err != nil {
				st.Discard()
				return nil, err
			}
		}
	}
	if err := st.Commit(); err != nil {
		return nil, err
	}
	return info, nil
}
