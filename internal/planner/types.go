package planner

// Action describes the per-frame processing decision.
type Action int

const (
	ActionDecode Action = iota
	ActionReuse
)

func (a Action) String() string {
	switch a {
	case ActionDecode:
		return "decode"
	case ActionReuse:
		return "reuse"
	default:
		return "unknown"
	}
}

// FramePlan is the decision for one RAW frame. Index is the frame's position
// in the sorted discovery order and is what restores ordering after the
// parallel decode.
type FramePlan struct {
	Index  int
	Source string // RAW input
	Output string // JPEG intermediate
	Action Action
}

// EncodeSettings is the ffmpeg-facing description of a video format.
type EncodeSettings struct {
	Codec         string   // "libx264" or "prores_ks"
	Profile       string   // -profile:v value; empty for H.264
	PixFmt        string   // output pixel format
	QualityOpts   []string // e.g. -crf/-preset for libx264
	ContainerOpts []string // e.g. -movflags +faststart
}

// Args renders the settings as ffmpeg output options.
func (s EncodeSettings) Args() []string {
	args := []string{"-c:v", s.Codec}
	if s.Profile != "" {
		args = append(args, "-profile:v", s.Profile)
	}
	args = append(args, s.QualityOpts...)
	args = append(args, "-pix_fmt", s.PixFmt)
	return append(args, s.ContainerOpts...)
}
