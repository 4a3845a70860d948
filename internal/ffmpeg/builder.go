package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/rawreel/internal/planner"
)

// Options carries the flags shared by every invocation.
type Options struct {
	Verbose bool // -loglevel info and -stats instead of -loglevel error
}

// SequencePattern is the input pattern used for numbered frame directories.
const SequencePattern = "%06d.jpg"

func preamble(o Options, stdinFrames bool) []string {
	args := make([]string, 0, 32)
	args = append(args, "-hide_banner")
	if !stdinFrames {
		args = append(args, "-nostdin")
	}
	args = append(args, "-y")
	if o.Verbose {
		args = append(args, "-loglevel", "info", "-stats")
	} else {
		args = append(args, "-loglevel", "error")
	}
	return args
}

// BuildPipeEncode reads concatenated JPEG frames from stdin at fps and
// encodes them with s into out.
func BuildPipeEncode(o Options, fps int, s planner.EncodeSettings, out string) []string {
	rate := strconv.Itoa(fps)
	args := preamble(o, true)
	args = append(args,
		"-f", "image2pipe",
		"-framerate", rate,
		"-c:v", "mjpeg",
		"-i", "-",
		"-an",
	)
	args = append(args, s.Args()...)
	return append(args, "-r", rate, out)
}

// BuildSequenceEncode reads the numbered sequence dir/%06d.jpg (starting at
// 0) at fps and encodes it with s into out.
func BuildSequenceEncode(o Options, pattern string, fps int, s planner.EncodeSettings, out string) []string {
	rate := strconv.Itoa(fps)
	args := preamble(o, false)
	args = append(args,
		"-framerate", rate,
		"-start_number", "0",
		"-i", pattern,
		"-an",
	)
	args = append(args, s.Args()...)
	return append(args, "-r", rate, out)
}

// BuildGrade applies lutPath to in through lut3d and encodes with s into
// out, keeping the input frame rate.
func BuildGrade(o Options, in, lutPath string, fps int, s planner.EncodeSettings, out string) []string {
	args := preamble(o, false)
	args = append(args,
		"-i", in,
		"-map", "0:v:0",
		"-vf", LUT3DFilter(lutPath),
		"-an",
	)
	args = append(args, s.Args()...)
	return append(args, "-r", strconv.Itoa(fps), out)
}

// LUT3DFilter returns the lut3d filter description for path.
func LUT3DFilter(path string) string {
	return "lut3d=file=" + EscapeFilterPath(path)
}

// EscapeFilterPath escapes a path for use as a filter option value inside a
// filtergraph: first the option-value level (\ ' :), then the filtergraph
// level (\ ' [ ] , ;).
func EscapeFilterPath(path string) string {
	return escape(escape(path, `\':`), `\'[],;`)
}

func escape(s, special string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
