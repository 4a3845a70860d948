package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/tiff"

	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/tool"
)

// ErrNoImage is returned when the RAW decoder exits cleanly but emits nothing.
var ErrNoImage = errors.New("decoder produced no image")

// FrameError is a per-frame decode failure. It never aborts sibling frames.
type FrameError struct {
	Source string
	Err    error
}

func (e *FrameError) Error() string { return fmt.Sprintf("decode %s: %v", e.Source, e.Err) }

func (e *FrameError) Unwrap() error { return e.Err }

// Decoder develops one RAW frame into one JPEG intermediate through dcraw.
// It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	Binary string // dcraw executable
	Runner tool.Runner
}

// NewDecoder returns a Decoder using the os/exec runner.
func NewDecoder(binary string) *Decoder {
	return &Decoder{Binary: binary, Runner: tool.Exec{}}
}

// Decode develops src with p and writes the JPEG to dst atomically. A
// missing or zero-byte result is reported as an error, never as success.
func (d *Decoder) Decode(ctx context.Context, src, dst string, p Profile) error {
	if err := p.Validate(); err != nil {
		return &FrameError{Source: src, Err: err}
	}

	var stdout bytes.Buffer
	res := d.Runner.Run(ctx, tool.Command{
		Name:   d.Binary,
		Args:   p.DcrawArgs(src),
		Stdout: &stdout,
	})
	if err := res.AsError(d.Binary); err != nil {
		return &FrameError{Source: src, Err: err}
	}
	if stdout.Len() == 0 {
		return &FrameError{Source: src, Err: ErrNoImage}
	}

	img, err := tiff.Decode(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return &FrameError{Source: src, Err: fmt.Errorf("read decoder output: %w", err)}
	}
	if err := writeJPEG(dst, img, p.JPEGQuality); err != nil {
		return &FrameError{Source: src, Err: fmt.Errorf("write %s: %w", dst, err)}
	}
	if err := fsx.CheckNonEmpty(dst); err != nil {
		return &FrameError{Source: src, Err: err}
	}
	return nil
}

func writeJPEG(dst string, img image.Image, quality int) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("invalid image size %dx%d", b.Dx(), b.Dy())
	}
	return fsx.WriteAtomic(dst, func(w io.Writer) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
}
