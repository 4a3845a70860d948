package probe

import (
	"math"
	"strconv"
)

// VideoInfo holds the parsed properties of the first video stream plus the
// container-level fields rawreel reports.
type VideoInfo struct {
	Path       string
	FormatName string
	Codec      string
	Profile    string
	PixFmt     string
	Width      int
	Height     int
	FrameRate  float64 // from avg_frame_rate, falling back to r_frame_rate
	Frames     int     // nb_read_frames when counted, else nb_frames
	Duration   float64 // seconds
	Size       int64   // bytes
}

// Resolution returns "WxH", or "unknown".
func (v *VideoInfo) Resolution() string {
	if v.Width <= 0 || v.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(v.Width) + "x" + strconv.Itoa(v.Height)
}

// MatchesFPS reports whether the stream frame rate equals fps within
// rounding of ffprobe's rational output.
func (v *VideoInfo) MatchesFPS(fps int) bool {
	return math.Abs(v.FrameRate-float64(fps)) < 0.01
}
