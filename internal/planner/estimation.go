package planner

import "github.com/backmassage/rawreel/internal/config"

// SizeEstimate is a nominal output size for display before an encode.
type SizeEstimate struct {
	Kbps  int
	Bytes int64
	Known bool
}

// Nominal ProRes target rates in Mbps at 1920x1080 and 29.97 fps.
var proresMbps = map[string]float64{
	"proxy": 45,
	"lt":    102,
	"422":   147,
	"hq":    220,
}

// h264BitsPerPixel approximates libx264 at CRF 18 on graded-flat footage.
const h264BitsPerPixel = 0.12

// EstimateSize predicts the output bitrate and size of a video. ProRes is
// close to constant bitrate so the estimate scales the nominal rate by
// pixel count and frame rate; H.264 uses a bits-per-pixel heuristic.
func EstimateSize(f config.VideoFormat, width, height, fps, frames int) SizeEstimate {
	if width <= 0 || height <= 0 || fps <= 0 || frames <= 0 {
		return SizeEstimate{}
	}
	pixels := float64(width * height)

	var kbps float64
	if f.IsProRes() {
		base, ok := proresMbps[f.Variant()]
		if !ok {
			return SizeEstimate{}
		}
		kbps = base * 1000 * (pixels / (1920 * 1080)) * (float64(fps) / 29.97)
	} else {
		kbps = pixels * float64(fps) * h264BitsPerPixel / 1000
	}

	seconds := float64(frames) / float64(fps)
	return SizeEstimate{
		Kbps:  int(kbps + 0.5),
		Bytes: int64(kbps * 1000 / 8 * seconds),
		Known: true,
	}
}
