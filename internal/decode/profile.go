package decode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColorSpace selects the dcraw output color space (-o).
type ColorSpace string

const (
	ColorRaw      ColorSpace = "raw"      // Camera-native, unconverted (default; flat look).
	ColorSRGB     ColorSpace = "srgb"     // sRGB D65.
	ColorAdobe    ColorSpace = "adobe"    // Adobe RGB (1998).
	ColorWide     ColorSpace = "wide"     // Wide-gamut RGB.
	ColorProPhoto ColorSpace = "prophoto" // Kodak ProPhoto RGB.
	ColorXYZ      ColorSpace = "xyz"      // CIE XYZ.
)

var colorSpaceCodes = map[ColorSpace]int{
	ColorRaw: 0, ColorSRGB: 1, ColorAdobe: 2, ColorWide: 3, ColorProPhoto: 4, ColorXYZ: 5,
}

// WhiteBalance selects how white balance multipliers are chosen.
type WhiteBalance string

const (
	WBCamera WhiteBalance = "camera" // As-shot multipliers from the file (-w).
	WBAuto   WhiteBalance = "auto"   // Averaged over the whole image (-a).
	WBNone   WhiteBalance = "none"   // Daylight multipliers, no flag.
)

// Demosaic selects the interpolation algorithm (-q).
type Demosaic string

const (
	DemosaicLinear Demosaic = "linear" // Bilinear (default; softest, flattest).
	DemosaicVNG    Demosaic = "vng"    // Variable Number of Gradients.
	DemosaicPPG    Demosaic = "ppg"    // Patterned Pixel Grouping.
	DemosaicAHD    Demosaic = "ahd"    // Adaptive Homogeneity-Directed.
)

var demosaicCodes = map[Demosaic]int{
	DemosaicLinear: 0, DemosaicVNG: 1, DemosaicPPG: 2, DemosaicAHD: 3,
}

// Highlight selects clipped-highlight handling (-H).
type Highlight string

const (
	HighlightClip    Highlight = "clip"    // Clip to solid white.
	HighlightIgnore  Highlight = "ignore"  // Leave unclipped, may show color casts (default).
	HighlightBlend   Highlight = "blend"   // Blend clipped and unclipped channels.
	HighlightRebuild Highlight = "rebuild" // Reconstruct, mid-strength.
)

var highlightCodes = map[Highlight]int{
	HighlightClip: 0, HighlightIgnore: 1, HighlightBlend: 2, HighlightRebuild: 5,
}

// Gamma is a (power, toe slope) gamma curve pair.
type Gamma struct {
	Power float64 `yaml:"power"`
	Slope float64 `yaml:"slope"`
}

// Unset marks UserBlack or UserSat as "use the camera value".
const Unset = -1

// Profile is the complete set of RAW development parameters. A Profile is a
// plain value: copy it freely, it has no identity beyond its fields. Build one
// with DefaultProfile and call Validate before handing it to a Decoder.
type Profile struct {
	Gamma        Gamma        `yaml:"gamma"`
	NoAutoBright bool         `yaml:"no_auto_bright"`
	Bright       float64      `yaml:"bright"`
	OutputColor  ColorSpace   `yaml:"output_color"`
	WhiteBalance WhiteBalance `yaml:"white_balance"`
	Demosaic     Demosaic     `yaml:"demosaic"`
	Highlight    Highlight    `yaml:"highlight"`
	UserBlack    int          `yaml:"user_black"` // Unset = camera black level.
	UserSat      int          `yaml:"user_sat"`   // Unset = camera saturation point.
	HalfSize     bool         `yaml:"half_size"`
	JPEGQuality  int          `yaml:"jpeg_quality"`
}

// DefaultProfile returns the flat, log-like development used for grading
// proxies: extreme gamma, fixed brightness, raw color, linear demosaic and
// unclipped highlights.
func DefaultProfile() Profile {
	return Profile{
		Gamma:        Gamma{Power: 10.1, Slope: 10.1},
		NoAutoBright: true,
		Bright:       3,
		OutputColor:  ColorRaw,
		WhiteBalance: WBCamera,
		Demosaic:     DemosaicLinear,
		Highlight:    HighlightIgnore,
		UserBlack:    200,
		UserSat:      10000,
		HalfSize:     true,
		JPEGQuality:  95,
	}
}

// Validate rejects unknown enum values and out-of-range numbers.
func (p Profile) Validate() error {
	var errs []error
	if !finite(p.Gamma.Power) || !finite(p.Gamma.Slope) || p.Gamma.Power <= 0 || p.Gamma.Slope < 0 {
		errs = append(errs, fmt.Errorf("invalid gamma (%g, %g): power must be > 0 and slope >= 0", p.Gamma.Power, p.Gamma.Slope))
	}
	if !finite(p.Bright) || p.Bright <= 0 {
		errs = append(errs, fmt.Errorf("invalid brightness %g (must be > 0)", p.Bright))
	}
	if _, ok := colorSpaceCodes[p.OutputColor]; !ok {
		errs = append(errs, fmt.Errorf("invalid output color space %q (use %s)", p.OutputColor, choices(colorSpaceCodes)))
	}
	switch p.WhiteBalance {
	case WBCamera, WBAuto, WBNone:
	default:
		errs = append(errs, fmt.Errorf("invalid white balance %q (use camera, auto or none)", p.WhiteBalance))
	}
	if _, ok := demosaicCodes[p.Demosaic]; !ok {
		errs = append(errs, fmt.Errorf("invalid demosaic algorithm %q (use %s)", p.Demosaic, choices(demosaicCodes)))
	}
	if _, ok := highlightCodes[p.Highlight]; !ok {
		errs = append(errs, fmt.Errorf("invalid highlight mode %q (use %s)", p.Highlight, choices(highlightCodes)))
	}
	if p.UserBlack < Unset {
		errs = append(errs, fmt.Errorf("invalid black level %d", p.UserBlack))
	}
	if p.UserSat < Unset || p.UserSat == 0 {
		errs = append(errs, fmt.Errorf("invalid saturation point %d", p.UserSat))
	}
	if p.UserBlack > Unset && p.UserSat > Unset && p.UserBlack >= p.UserSat {
		errs = append(errs, fmt.Errorf("black level %d must be below saturation point %d", p.UserBlack, p.UserSat))
	}
	if p.JPEGQuality < 1 || p.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("invalid JPEG quality %d (1-100)", p.JPEGQuality))
	}
	return errors.Join(errs...)
}

// DcrawArgs maps the profile onto dcraw flags for src. Output is a 8-bit TIFF
// written to stdout. The profile must be valid.
func (p Profile) DcrawArgs(src string) []string {
	args := make([]string, 0, 24)
	args = append(args, "-c", "-T")
	if p.HalfSize {
		args = append(args, "-h")
	}
	args = append(args, "-g", formatFloat(p.Gamma.Power), formatFloat(p.Gamma.Slope))
	if p.NoAutoBright {
		args = append(args, "-W")
	}
	args = append(args, "-b", formatFloat(p.Bright))
	args = append(args, "-o", strconv.Itoa(colorSpaceCodes[p.OutputColor]))
	switch p.WhiteBalance {
	case WBCamera:
		args = append(args, "-w")
	case WBAuto:
		args = append(args, "-a")
	}
	args = append(args,
		"-q", strconv.Itoa(demosaicCodes[p.Demosaic]),
		"-H", strconv.Itoa(highlightCodes[p.Highlight]),
	)
	if p.UserBlack > Unset {
		args = append(args, "-k", strconv.Itoa(p.UserBlack))
	}
	if p.UserSat > Unset {
		args = append(args, "-S", strconv.Itoa(p.UserSat))
	}
	return append(args, src)
}

// Summary is a one-line description for logs.
func (p Profile) Summary() string {
	res := "full"
	if p.HalfSize {
		res = "half"
	}
	return fmt.Sprintf("gamma=%s/%s bright=%s color=%s wb=%s demosaic=%s highlight=%s black=%d sat=%d res=%s",
		formatFloat(p.Gamma.Power), formatFloat(p.Gamma.Slope), formatFloat(p.Bright),
		p.OutputColor, p.WhiteBalance, p.Demosaic, p.Highlight, p.UserBlack, p.UserSat, res)
}

// LoadProfile reads a YAML preset. Fields absent from the file keep their
// DefaultProfile values; unknown keys are rejected.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// --- parsers for interactive input ---

// ParseWhiteBalance accepts a case-insensitive white balance mode.
func ParseWhiteBalance(s string) (WhiteBalance, error) {
	w := WhiteBalance(strings.ToLower(strings.TrimSpace(s)))
	switch w {
	case WBCamera, WBAuto, WBNone:
		return w, nil
	}
	return "", fmt.Errorf("invalid white balance %q (use camera, auto or none)", s)
}

// ParseColorSpace accepts a case-insensitive color space name.
func ParseColorSpace(s string) (ColorSpace, error) {
	c := ColorSpace(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := colorSpaceCodes[c]; !ok {
		return "", fmt.Errorf("invalid output color space %q (use %s)", s, choices(colorSpaceCodes))
	}
	return c, nil
}

// ParseDemosaic accepts a case-insensitive demosaic algorithm name.
func ParseDemosaic(s string) (Demosaic, error) {
	d := Demosaic(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := demosaicCodes[d]; !ok {
		return "", fmt.Errorf("invalid demosaic algorithm %q (use %s)", s, choices(demosaicCodes))
	}
	return d, nil
}

// ParseHighlight accepts a case-insensitive highlight mode name.
func ParseHighlight(s string) (Highlight, error) {
	h := Highlight(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := highlightCodes[h]; !ok {
		return "", fmt.Errorf("invalid highlight mode %q (use %s)", s, choices(highlightCodes))
	}
	return h, nil
}

// ColorSpaceNames lists valid output color space names in code order.
func ColorSpaceNames() []string { return []string{"raw", "srgb", "adobe", "wide", "prophoto", "xyz"} }

// WhiteBalanceNames lists valid white balance modes.
func WhiteBalanceNames() []string { return []string{"camera", "auto", "none"} }

// DemosaicNames lists valid demosaic names in code order.
func DemosaicNames() []string { return []string{"linear", "vng", "ppg", "ahd"} }

// HighlightNames lists valid highlight names in code order.
func HighlightNames() []string { return []string{"ignore", "clip", "blend", "rebuild"} }

func choices[K ~string](m map[K]int) string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, string(k))
	}
	sort.Slice(names, func(i, j int) bool { return m[K(names[i])] < m[K(names[j])] })
	return strings.Join(names, ", ")
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
