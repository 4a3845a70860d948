package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvLUT     = "RAWREEL_LUT"
	EnvFPS     = "RAWREEL_FPS"
	EnvWorkers = "RAWREEL_WORKERS"
	EnvLog     = "RAWREEL_LOG"
	EnvDcraw   = "RAWREEL_DCRAW"
	EnvFFmpeg  = "RAWREEL_FFMPEG"
	EnvFFprobe = "RAWREEL_FFPROBE"
	EnvFFplay  = "RAWREEL_FFPLAY"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ApplyEnv overlays RAWREEL_* variables onto cfg. Flags parsed afterwards
// still win. lookup is os.LookupEnv in production.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a whole number (got %q)", key, v)
		}
		*dst = n
		return nil
	}

	str(EnvLUT, &cfg.LUTPath)
	str(EnvLog, &cfg.LogFile)
	str(EnvDcraw, &cfg.DcrawPath)
	str(EnvFFmpeg, &cfg.FFmpegPath)
	str(EnvFFprobe, &cfg.FFprobePath)
	str(EnvFFplay, &cfg.FFplayPath)
	if err := num(EnvFPS, &cfg.FPS); err != nil {
		return err
	}
	return num(EnvWorkers, &cfg.Workers)
}
