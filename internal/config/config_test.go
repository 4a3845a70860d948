package config

import (
	"bytes"
	"flag"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawreel/internal/decode"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/shots/A001", "/shots/A001"},
		{"single trailing slash", "/shots/A001/", "/shots/A001"},
		{"multiple trailing slashes", "/shots/A001///", "/shots/A001"},
		{"root path", "/", "/"},
		{"relative with slash", "frames/", "frames"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, "dcraw", cfg.DcrawPath)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, decode.DefaultProfile(), cfg.Profile)
	assert.True(t, cfg.ShowProgress)
	assert.Empty(t, cfg.InputDir, "input is asked for interactively")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"half quality", func(c *Config) { c.Quality = QualityHalf }, false},
		{"unknown quality", func(c *Config) { c.Quality = "quarter" }, true},
		{"prores flat", func(c *Config) { c.FlatFormat = FormatProResLT }, false},
		{"unknown graded format", func(c *Config) { c.GradedFormat = "webm" }, true},
		{"negative fps", func(c *Config) { c.FPS = -1 }, true},
		{"fps too high", func(c *Config) { c.FPS = 1000 }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"bad reuse", func(c *Config) { c.Reuse = "maybe" }, true},
		{"bad grade toggle", func(c *Config) { c.Grade = "perhaps" }, true},
		{"invalid demosaic", func(c *Config) { c.Profile.Demosaic = "bogus" }, true},
		{"NaN brightness", func(c *Config) { c.Profile.Bright = math.NaN() }, true},
		{"infinite gamma", func(c *Config) { c.Profile.Gamma.Power = math.Inf(1) }, true},
		{"empty ffmpeg path", func(c *Config) { c.FFmpegPath = " " }, true},
		{"profile file and custom", func(c *Config) { c.ProfileFile = "p.yaml"; c.CustomProfile = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseVideoFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    VideoFormat
		wantErr bool
	}{
		{"mp4", FormatH264, false},
		{"H264", FormatH264, false},
		{"prores", FormatProResHQ, false},
		{"prores-proxy", FormatProResProxy, false},
		{"lt", FormatProResLT, false},
		{"422", FormatProRes422, false},
		{"PRORES-HQ", FormatProResHQ, false},
		{"avi", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVideoFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVideoFormat_ExtAndVariant(t *testing.T) {
	assert.Equal(t, ".mp4", FormatH264.Ext())
	assert.Equal(t, ".mov", FormatProRes422.Ext())
	assert.Equal(t, "422", FormatProRes422.Variant())
	assert.False(t, FormatH264.IsProRes())
	assert.True(t, FormatProResProxy.IsProRes())
}

func TestQuality_HalfSize(t *testing.T) {
	assert.False(t, QualityFull.HalfSize())
	assert.True(t, QualityHalf.HalfSize())
}

func TestParseFlags_Answers(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{
		"--quality", "full", "--fps", "25", "--lut", "/luts/a.cube",
		"--reprocess", "--flat-format", "prores-lt", "--graded-format", "mp4",
		"--no-grade", "-y", "-j", "3", "--no-color", "/shots/A001/",
	}, "test", &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "/shots/A001", cfg.InputDir)
	assert.Equal(t, QualityFull, cfg.Quality)
	assert.Equal(t, 25, cfg.FPS)
	assert.Equal(t, "/luts/a.cube", cfg.LUTPath)
	assert.Equal(t, ReuseReprocess, cfg.Reuse)
	assert.Equal(t, FormatProResLT, cfg.FlatFormat)
	assert.Equal(t, FormatH264, cfg.GradedFormat)
	assert.Equal(t, ToggleNo, cfg.Grade)
	assert.True(t, cfg.AssumeYes)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestParseFlags_Conflicts(t *testing.T) {
	for _, args := range [][]string{
		{"--reuse", "--reprocess"},
		{"--grade", "--no-grade"},
		{"a", "b"},
		{"--quality", "quarter"},
		{"--flat-format", "gif"},
	} {
		cfg := DefaultConfig()
		assert.Error(t, ParseFlags(&cfg, args, "test", &bytes.Buffer{}), "args %v", args)
	}
}

func TestParseFlags_HelpAndVersion(t *testing.T) {
	cfg := DefaultConfig()
	var out bytes.Buffer
	err := ParseFlags(&cfg, []string{"--help"}, "1.2.3", &out)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, out.String(), "rawreel v1.2.3")

	cfg = DefaultConfig()
	assert.ErrorIs(t, ParseFlags(&cfg, []string{"-V"}, "1.2.3", &out), ErrVersion)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLUT:     "/luts/env.cube",
		EnvFPS:     "30",
		EnvWorkers: "2",
		EnvFFmpeg:  "/opt/ffmpeg/bin/ffmpeg",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg, lookup))
	assert.Equal(t, "/luts/env.cube", cfg.LUTPath)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "dcraw", cfg.DcrawPath)

	env[EnvFPS] = "fast"
	assert.Error(t, ApplyEnv(&cfg, lookup))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAWREEL_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("RAWREEL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RAWREEL_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("RAWREEL_TEST_DOTENV"))
}
