package decode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/backmassage/rawreel/internal/fsx"
	"github.com/backmassage/rawreel/internal/tool"
	"github.com/backmassage/rawreel/internal/tool/tooltest"
)

func tiffFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return buf.Bytes()
}

func stdoutRunner(payload []byte) *tooltest.Runner {
	return &tooltest.Runner{Handle: func(_ context.Context, c tool.Command) tool.Result {
		if c.Stdout != nil {
			_, _ = c.Stdout.Write(payload)
		}
		return tool.Result{}
	}}
}

func TestDecode_WritesJPEG(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "A001_0001.jpg")
	runner := stdoutRunner(tiffFixture(t, 16, 9))
	d := &Decoder{Binary: "dcraw", Runner: runner}

	require.NoError(t, d.Decode(context.Background(), "/shots/A001_0001.dng", dst, DefaultProfile()))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 9, cfg.Height)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "dcraw", calls[0].Name)
	assert.Equal(t, "/shots/A001_0001.dng", calls[0].Args[len(calls[0].Args)-1])

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDecode_EmptyOutputIsFailure(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.jpg")
	d := &Decoder{Binary: "dcraw", Runner: stdoutRunner(nil)}

	err := d.Decode(context.Background(), "x.dng", dst, DefaultProfile())
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "x.dng", fe.Source)
	assert.ErrorIs(t, err, ErrNoImage)
	assert.False(t, fsx.Exists(dst))
}

func TestDecode_ToolFailure(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.jpg")
	runner := &tooltest.Runner{Handle: func(context.Context, tool.Command) tool.Result {
		return tooltest.Failure("Cannot decode file x.dng")
	}}
	d := &Decoder{Binary: "dcraw", Runner: runner}

	err := d.Decode(context.Background(), "x.dng", dst, DefaultProfile())
	var te *tool.Error
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "Cannot decode file")
	assert.False(t, fsx.Exists(dst))
}

func TestDecode_GarbageOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.jpg")
	d := &Decoder{Binary: "dcraw", Runner: stdoutRunner([]byte("not a tiff"))}
	err := d.Decode(context.Background(), "x.dng", dst, DefaultProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read decoder output")
	assert.False(t, fsx.Exists(dst))
}

func TestDecode_InvalidProfileNeverRunsTool(t *testing.T) {
	runner := stdoutRunner(tiffFixture(t, 2, 2))
	d := &Decoder{Binary: "dcraw", Runner: runner}
	p := DefaultProfile()
	p.Demosaic = "bogus"

	err := d.Decode(context.Background(), "x.dng", filepath.Join(t.TempDir(), "o.jpg"), p)
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, runner.Count())
}
