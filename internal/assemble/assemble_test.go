package assemble

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/ffmpeg"
	"github.com/backmassage/rawreel/internal/probe"
	"github.com/backmassage/rawreel/internal/tool"
	"github.com/backmassage/rawreel/internal/tool/tooltest"
)

func writeFrames(t *testing.T, dir string, n, w, h int) []string {
	t.Helper()
	frames := make([]string, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		img.Set(0, 0, color.RGBA{R: uint8(i), A: 255})
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, img, nil))
		frames[i] = filepath.Join(dir, "f"+string(rune('a'+i))+".jpg")
		require.NoError(t, os.WriteFile(frames[i], buf.Bytes(), 0o644))
	}
	return frames
}

// countingProber reports whatever frame count the fake ffmpeg recorded.
type countingProber struct {
	mu     sync.Mutex
	frames map[string]int
	paths  []string
}

func (p *countingProber) set(path string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frames == nil {
		p.frames = map[string]int{}
	}
	p.frames[path] = n
}

func (p *countingProber) Probe(_ context.Context, path string) (*probe.VideoInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	return &probe.VideoInfo{Path: path, Frames: p.frames[path], FrameRate: 24}, nil
}

// pipeFFmpeg counts JPEG start markers on stdin and writes a stand-in file.
func pipeFFmpeg(pr *countingProber) *tooltest.Runner {
	return &tooltest.Runner{Handle: func(_ context.Context, c tool.Command) tool.Result {
		data, err := io.ReadAll(c.Stdin)
		if err != nil {
			return tool.Result{Err: err}
		}
		out := c.Args[len(c.Args)-1]
		n := bytes.Count(data, []byte{0xFF, 0xD8, 0xFF})
		pr.set(out, n)
		return tool.Result{Err: os.WriteFile(out, []byte("mp4"), 0o644)}
	}}
}

// seqFFmpeg counts sequence entries in the -i directory and records their
// names and link targets.
func seqFFmpeg(pr *countingProber, names, targets *[]string) *tooltest.Runner {
	return &tooltest.Runner{Handle: func(_ context.Context, c tool.Command) tool.Result {
		var pattern string
		for i, a := range c.Args {
			if a == "-i" {
				pattern = c.Args[i+1]
			}
		}
		dir := filepath.Dir(pattern)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return tool.Result{Err: err}
		}
		for _, e := range entries {
			*names = append(*names, e.Name())
			tgt, err := os.Readlink(filepath.Join(dir, e.Name()))
			if err == nil {
				*targets = append(*targets, tgt)
			}
		}
		out := c.Args[len(c.Args)-1]
		pr.set(out, len(entries))
		return tool.Result{Err: os.WriteFile(out, []byte("mov"), 0o644)}
	}}
}

func TestH264Encoder_TenFrames(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, 10, 32, 18)
	pr := &countingProber{}
	runner := pipeFFmpeg(pr)
	enc := New(config.FormatH264, Base{FFmpeg: "ffmpeg", Runner: runner, Prober: pr})

	out := filepath.Join(dir, "flat_video.mp4")
	a, err := enc.Encode(context.Background(), frames, 24, out)
	require.NoError(t, err)

	assert.Equal(t, out, a.Path)
	assert.Equal(t, 10, a.Frames)
	assert.Equal(t, 24, a.FPS)
	assert.Equal(t, config.FormatH264, a.Format)
	assert.Equal(t, 32, a.Width)
	assert.FileExists(t, out)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Args, "libx264")
	assert.Contains(t, calls[0].Args, "image2pipe")

	// The probe ran against the staged file, not the published one.
	require.Len(t, pr.paths, 1)
	assert.NotEqual(t, out, pr.paths[0])
	assert.Equal(t, ".mp4", filepath.Ext(pr.paths[0]))
}

func TestProResEncoder_SequenceOrder(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, 5, 16, 16)
	pr := &countingProber{}
	var names, targets []string
	runner := seqFFmpeg(pr, &names, &targets)
	enc := New(config.FormatProResLT, Base{FFmpeg: "ffmpeg", Runner: runner, Prober: pr})

	out := filepath.Join(dir, "flat_video.mov")
	a, err := enc.Encode(context.Background(), frames, 25, out)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Frames)
	assert.Equal(t, config.FormatProResLT, a.Format)
	assert.FileExists(t, out)

	args := runner.Calls()[0].Args
	assert.Contains(t, args, "prores_ks")
	assert.Contains(t, strings.Join(args, " "), "-profile:v 1")

	assert.Len(t, names, 5)
	if len(targets) > 0 { // symlinks supported
		assert.Equal(t, frames, targets)
	}
}

func TestEncoders_SingleFrame(t *testing.T) {
	tests := []struct {
		name   string
		format config.VideoFormat
		ext    string
		seq    bool
	}{
		{"h264", config.FormatH264, ".mp4", false},
		{"prores proxy", config.FormatProResProxy, ".mov", true},
		{"prores hq", config.FormatProResHQ, ".mov", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			frames := writeFrames(t, dir, 1, 32, 18)
			pr := &countingProber{}
			var names, targets []string
			runner := pipeFFmpeg(pr)
			if tt.seq {
				runner = seqFFmpeg(pr, &names, &targets)
			}
			enc := New(tt.format, Base{FFmpeg: "ffmpeg", Runner: runner, Prober: pr})

			out := filepath.Join(dir, "flat_video"+tt.ext)
			a, err := enc.Encode(context.Background(), frames, 24, out)
			require.NoError(t, err)
			assert.Equal(t, 1, a.Frames)
			assert.Equal(t, tt.format, a.Format)
			assert.FileExists(t, out)
			require.Len(t, runner.Calls(), 1)

			if !tt.seq {
				return
			}
			assert.Equal(t, []string{"000000.jpg"}, names)
			if len(targets) > 0 { // symlinks supported
				assert.Equal(t, frames, targets)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	dir := t.TempDir()

	_, err := Preflight(nil)
	assert.ErrorIs(t, err, ErrEmptySequence)

	same := writeFrames(t, dir, 3, 20, 10)
	size, err := Preflight(same)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 10), size)

	odd := writeFrames(t, t.TempDir(), 1, 21, 10)
	_, err = Preflight(append(same, odd...))
	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Index)
	assert.Equal(t, image.Pt(21, 10), dm.Got)

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	_, err = Preflight([]string{bad})
	assert.Error(t, err)
}

func TestEncode_PreflightFailureNeverRunsFFmpeg(t *testing.T) {
	runner := &tooltest.Runner{}
	for _, f := range []config.VideoFormat{config.FormatH264, config.FormatProResHQ} {
		enc := New(f, Base{FFmpeg: "ffmpeg", Runner: runner})
		_, err := enc.Encode(context.Background(), nil, 24, filepath.Join(t.TempDir(), "x"+f.Ext()))
		assert.ErrorIs(t, err, ErrEmptySequence)
	}
	assert.Equal(t, 0, runner.Count())
}

func TestEncode_FFmpegFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, 3, 8, 8)
	runner := &tooltest.Runner{Handle: func(_ context.Context, c tool.Command) tool.Result {
		if c.Stdin != nil {
			_, _ = io.CopyN(io.Discard, c.Stdin, 10)
		}
		_ = os.WriteFile(c.Args[len(c.Args)-1], []byte("partial"), 0o644)
		return tooltest.Failure("Unknown encoder 'libx264'")
	}}

	for _, f := range []config.VideoFormat{config.FormatH264, config.FormatProResProxy} {
		out := filepath.Join(dir, "flat_video"+f.Ext())
		_, err := New(f, Base{FFmpeg: "ffmpeg", Runner: runner}).Encode(context.Background(), frames, 24, out)
		var re *ffmpeg.RunError
		require.ErrorAs(t, err, &re, string(f))
		assert.Equal(t, ffmpeg.CauseMissingEncoder, re.Cause)
		assert.NoFileExists(t, out)
	}

	// Only the three frames remain; every staged temp was discarded.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestH264Encoder_CorruptFrame(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, 3, 8, 8)
	// Keep a valid header so pre-flight passes but truncate the scan data.
	b, err := os.ReadFile(frames[1])
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(frames[1], b[:len(b)/2], 0o644))

	pr := &countingProber{}
	out := filepath.Join(dir, "flat_video.mp4")
	_, err = New(config.FormatH264, Base{FFmpeg: "ffmpeg", Runner: pipeFFmpeg(pr), Prober: pr}).
		Encode(context.Background(), frames, 24, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 1")
	assert.NoFileExists(t, out)
}

func TestEncode_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, 4, 8, 8)
	pr := &countingProber{}
	runner := &tooltest.Runner{Handle: func(_ context.Context, c tool.Command) tool.Result {
		_, _ = io.Copy(io.Discard, c.Stdin)
		out := c.Args[len(c.Args)-1]
		pr.set(out, 3)
		return tool.Result{Err: os.WriteFile(out, []byte("mp4"), 0o644)}
	}}
	out := filepath.Join(dir, "flat_video.mp4")
	_, err := New(config.FormatH264, Base{FFmpeg: "ffmpeg", Runner: runner, Prober: pr}).
		Encode(context.Background(), frames, 24, out)
	var cm *CountMismatchError
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, 4, cm.Want)
	assert.Equal(t, 3, cm.Got)
	assert.NoFileExists(t, out)
}
