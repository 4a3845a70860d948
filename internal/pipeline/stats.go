package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/rawreel/internal/assemble"
	"github.com/backmassage/rawreel/internal/display"
)

// RunStats tracks what one run did.
type RunStats struct {
	Frames  int
	Decoded int
	Reused  int
	Failed  int

	Flat   *assemble.Artifact
	Graded *assemble.Artifact

	// Stopped is set when the user declined a step; the run still succeeded.
	Stopped bool

	DecodeTime time.Duration
	Elapsed    time.Duration
}

// Artifacts returns the produced videos in creation order.
func (s *RunStats) Artifacts() []assemble.Artifact {
	var out []assemble.Artifact
	if s.Flat != nil {
		out = append(out, *s.Flat)
	}
	if s.Graded != nil {
		out = append(out, *s.Graded)
	}
	return out
}

// PrintSummary writes one aligned row per artifact: name, format,
// resolution, runtime and size on disk.
func PrintSummary(w io.Writer, s *RunStats) {
	arts := s.Artifacts()
	if len(arts) == 0 {
		return
	}
	type row struct{ name, format, res, runtime, size string }
	rows := make([]row, 0, len(arts))
	nameW := len("File")
	for _, a := range arts {
		r := row{
			name:    filepath.Base(a.Path),
			format:  string(a.Format),
			res:     fmt.Sprintf("%dx%d", a.Width, a.Height),
			runtime: display.FormatRuntime(a.Frames, a.FPS),
			size:    "?",
		}
		if fi, err := os.Stat(a.Path); err == nil {
			r.size = display.FormatBytes(fi.Size())
		}
		if len(r.name) > nameW {
			nameW = len(r.name)
		}
		rows = append(rows, r)
	}

	fmt.Fprintf(w, "  %-*s  %-12s  %-11s  %-10s  %s\n", nameW, "File", "Format", "Resolution", "Size", "Runtime")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", nameW+52))
	for _, r := range rows {
		fmt.Fprintf(w, "  %-*s  %-12s  %-11s  %-10s  %s\n", nameW, r.name, r.format, r.res, r.size, r.runtime)
	}
	fmt.Fprintln(w)
}
