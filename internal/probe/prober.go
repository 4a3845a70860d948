package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/rawreel/internal/tool"
)

// ErrNoVideo is returned when the file has no video stream.
var ErrNoVideo = errors.New("no video stream")

// Prober runs ffprobe through a tool.Runner.
type Prober struct {
	Binary string
	Runner tool.Runner
}

// NewProber returns a Prober using the os/exec runner.
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary, Runner: tool.Exec{}}
}

// Probe counts the frames of path's first video stream and returns its
// properties. Counting decodes the whole stream, so this costs roughly one
// playback of the file.
func (p *Prober) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	var out bytes.Buffer
	res := p.Runner.Run(ctx, tool.Command{
		Name: p.Binary,
		Args: []string{
			"-v", "error",
			"-print_format", "json",
			"-count_frames",
			"-select_streams", "v:0",
			"-show_format", "-show_streams",
			path,
		},
		Stdout: &out,
	})
	if err := res.AsError(p.Binary); err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	info, err := ParseJSON(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	if info.Path == "" {
		info.Path = path
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into a VideoInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*VideoInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	for i := range raw.Streams {
		if raw.Streams[i].CodecType == "video" {
			return buildInfo(&raw.Format, &raw.Streams[i]), nil
		}
	}
	return nil, ErrNoVideo
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Profile      string `json:"profile"`
	PixFmt       string `json:"pix_fmt"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	NbReadFrames string `json:"nb_read_frames"`
	Duration     string `json:"duration"`
}

func buildInfo(f *ffprobeFormat, s *ffprobeStream) *VideoInfo {
	rate := parseRational(s.AvgFrameRate)
	if rate == 0 {
		rate = parseRational(s.RFrameRate)
	}
	frames := parseInt(s.NbReadFrames)
	if frames == 0 {
		frames = parseInt(s.NbFrames)
	}
	dur := parseFloat(f.Duration)
	if dur == 0 {
		dur = parseFloat(s.Duration)
	}
	return &VideoInfo{
		Path:       f.Filename,
		FormatName: f.FormatName,
		Codec:      s.CodecName,
		Profile:    s.Profile,
		PixFmt:     s.PixFmt,
		Width:      s.Width,
		Height:     s.Height,
		FrameRate:  rate,
		Frames:     frames,
		Duration:   dur,
		Size:       parseInt64(f.Size),
	}
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

// parseRational parses "num/den" (or a plain number); "0/0" yields 0.
func parseRational(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return parseFloat(num)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
