package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/rawreel/internal/convert"
	"github.com/backmassage/rawreel/internal/term"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical prores clip 700 MiB", 734003200, "700.0 MiB"},
		{"4.7 GiB", 5046586572, "4.7 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatBitrateLabel(t *testing.T) {
	assert.Equal(t, "800 kbps", FormatBitrateLabel(800))
	assert.Equal(t, "220.2 Mbps", FormatBitrateLabel(220220))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{4200 * time.Millisecond, "4.2s"},
		{125 * time.Second, "2m05s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestFormatRuntime(t *testing.T) {
	assert.Equal(t, "240 frames (10.0s @ 24 fps)", FormatRuntime(240, 24))
	assert.Equal(t, "5 frames", FormatRuntime(5, 0))
}

func TestPrintBanner(t *testing.T) {
	var plain bytes.Buffer
	PrintBanner(&plain, term.Palette{}, "1.0.0")
	assert.Contains(t, plain.String(), "v1.0.0")
	assert.NotContains(t, plain.String(), "\033[")

	var colored bytes.Buffer
	PrintBanner(&colored, term.Palette{Magenta: "\033[1;95m", NC: "\033[0m"}, "1.0.0")
	assert.Contains(t, colored.String(), "\033[1;95m")
}

func TestFrameBar_Drain(t *testing.T) {
	var out bytes.Buffer
	bar := NewFrameBar(&out, 3, "Decoding")
	ch := make(chan convert.Progress, 3)
	ch <- convert.Progress{Done: 1, Total: 3}
	ch <- convert.Progress{Done: 2, Total: 3, Failed: 1}
	ch <- convert.Progress{Done: 3, Total: 3, Failed: 1}
	close(ch)
	bar.Drain(ch)
	assert.True(t, bar.bar.IsFinished())
	assert.Contains(t, out.String(), "Decoding")
}

func TestSpinner_StartStop(t *testing.T) {
	var out bytes.Buffer
	s := StartSpinner(&out, "Encoding")
	time.Sleep(150 * time.Millisecond)
	s.Stop()
}
