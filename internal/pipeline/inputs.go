package pipeline

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/decode"
)

// collectInputs gathers every answer the later states need: input folder,
// resolution, decode profile, LUT path and frame rate.
func (o *Orchestrator) collectInputs() (State, error) {
	dir, err := o.inputDir()
	if err != nil {
		return 0, err
	}
	o.cfg.InputDir = dir

	o.sources, err = Discover(dir)
	if err != nil {
		return 0, err
	}
	if len(o.sources) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	o.stats.Frames = len(o.sources)
	o.log.Info("Found %d DNG files in %s", len(o.sources), dir)

	quality, err := o.quality()
	if err != nil {
		return 0, err
	}
	if err := o.resolveProfile(); err != nil {
		return 0, err
	}
	o.profile.HalfSize = quality.HalfSize()
	if err := o.profile.Validate(); err != nil {
		return 0, fmt.Errorf("decode profile: %w", err)
	}
	o.log.Info("Decode profile: %s", o.profile.Summary())

	if o.cfg.Grade != config.ToggleNo {
		if o.lutPath, err = o.lut(); err != nil {
			return 0, err
		}
	}
	if o.fps, err = o.frameRate(); err != nil {
		return 0, err
	}
	return StateDecodeOrReuse, nil
}

func (o *Orchestrator) inputDir() (string, error) {
	dir := o.cfg.InputDir
	if dir == "" && !o.cfg.AssumeYes {
		var err error
		dir, err = o.opts.Prompter.Text("Please paste the path to your DNG folder")
		if err != nil {
			return "", err
		}
		dir = strings.Trim(dir, `"'`)
	}
	if dir == "" {
		return "", ErrNoInputDir
	}
	dir = config.NormalizeDirArg(dir)
	fi, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("input folder: %w", err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("input folder: %s is not a directory", dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir, nil
}

func (o *Orchestrator) quality() (config.Quality, error) {
	if o.cfg.Quality != "" {
		return o.cfg.Quality, nil
	}
	if o.cfg.AssumeYes {
		return config.QualityHalf, nil
	}
	ans, err := o.opts.Prompter.Choice("Select quality", []string{string(config.QualityFull), string(config.QualityHalf)})
	if err != nil {
		return "", err
	}
	return config.Quality(ans), nil
}

// resolveProfile picks the decode profile: a YAML preset, the per-field
// questions, or the defaults.
func (o *Orchestrator) resolveProfile() error {
	if o.cfg.ProfileFile != "" {
		p, err := decode.LoadProfile(o.cfg.ProfileFile)
		if err != nil {
			return err
		}
		o.log.Info("Loaded decode profile %s", o.cfg.ProfileFile)
		o.profile = p
		return nil
	}
	custom := o.cfg.CustomProfile
	if !custom && !o.cfg.AssumeYes {
		useDefault, err := o.opts.Prompter.YesNo("Use default RAW->JPEG color configuration?")
		if err != nil {
			return err
		}
		custom = !useDefault
	}
	if !custom {
		return nil
	}
	for {
		p, err := o.customProfile(o.profile)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			o.log.Warn("Invalid configuration: %v", err)
			continue
		}
		o.profile = p
		return nil
	}
}

// customProfile asks for each decode parameter, offering the values of p.
func (o *Orchestrator) customProfile(p decode.Profile) (decode.Profile, error) {
	ask := o.opts.Prompter
	positive := func(v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.New("value must be a finite number greater than 0")
		}
		return nil
	}

	g, err := ask.Float("Enter gamma value (used for both gamma parameters)", p.Gamma.Power, positive)
	if err != nil {
		return p, err
	}
	p.Gamma = decode.Gamma{Power: g, Slope: g}

	if p.NoAutoBright, err = ask.YesNo("Disable auto brightness?"); err != nil {
		return p, err
	}
	if p.Bright, err = ask.Float("Enter brightness value", p.Bright, positive); err != nil {
		return p, err
	}
	cs, err := ask.Choice("Select output color space", decode.ColorSpaceNames())
	if err != nil {
		return p, err
	}
	if p.OutputColor, err = decode.ParseColorSpace(cs); err != nil {
		return p, err
	}
	wb, err := ask.Choice("Select white balance", decode.WhiteBalanceNames())
	if err != nil {
		return p, err
	}
	if p.WhiteBalance, err = decode.ParseWhiteBalance(wb); err != nil {
		return p, err
	}
	dm, err := ask.Choice("Select demosaic algorithm", decode.DemosaicNames())
	if err != nil {
		return p, err
	}
	if p.Demosaic, err = decode.ParseDemosaic(dm); err != nil {
		return p, err
	}
	hl, err := ask.Choice("Select highlight mode", decode.HighlightNames())
	if err != nil {
		return p, err
	}
	if p.Highlight, err = decode.ParseHighlight(hl); err != nil {
		return p, err
	}

	if p.UserBlack, err = ask.Int("Enter black level (-1 = camera)", p.UserBlack, decode.Unset, 65535); err != nil {
		return p, err
	}
	if p.UserSat, err = ask.Int("Enter saturation point (-1 = camera)", p.UserSat, decode.Unset, 65535); err != nil {
		return p, err
	}
	return p, nil
}

func (o *Orchestrator) lut() (string, error) {
	if o.cfg.LUTPath != "" {
		return o.cfg.LUTPath, nil
	}
	if o.cfg.AssumeYes {
		return config.DefaultLUTPath, nil
	}
	p, err := o.opts.Prompter.Input("Enter path to LUT", config.DefaultLUTPath)
	if err != nil {
		return "", err
	}
	return strings.Trim(p, `"'`), nil
}

func (o *Orchestrator) frameRate() (int, error) {
	if o.cfg.FPS > 0 {
		return o.cfg.FPS, nil
	}
	if o.cfg.AssumeYes {
		return config.DefaultFPS, nil
	}
	return o.opts.Prompter.Int("Enter FPS for the video", config.DefaultFPS, 1, 240)
}

// videoFormat asks for mp4 or ProRes and, for ProRes, the variant. preset
// short-circuits the questions.
func (o *Orchestrator) videoFormat(what string, preset config.VideoFormat) (config.VideoFormat, error) {
	if preset != "" {
		return preset, nil
	}
	if o.cfg.AssumeYes {
		return config.FormatH264, nil
	}
	kind, err := o.opts.Prompter.Choice("Select "+what+" format", []string{"mp4", "prores"})
	if err != nil {
		return "", err
	}
	if kind == "mp4" {
		return config.FormatH264, nil
	}
	variant, err := o.opts.Prompter.Choice("Select "+what+" ProRes variant", []string{"proxy", "lt", "422", "hq"})
	if err != nil {
		return "", err
	}
	return config.ParseVideoFormat(variant)
}

func baseNoExt(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
