package planner

import (
	"fmt"

	"github.com/backmassage/rawreel/internal/config"
	"github.com/backmassage/rawreel/internal/fsx"
)

// proresProfiles maps a ProRes variant onto prores_ks -profile:v.
var proresProfiles = map[string]string{
	"proxy": "0",
	"lt":    "1",
	"422":   "2",
	"hq":    "3",
}

// BuildFramePlans pairs every source with its intermediate path. With reuse
// set, a frame whose intermediate already exists and is non-empty is served
// from the cache; anything missing or empty is decoded, so an interrupted
// run resumes where it stopped. Without reuse every frame is decoded.
func BuildFramePlans(sources, outputs []string, reuse bool) ([]FramePlan, error) {
	if len(sources) != len(outputs) {
		return nil, fmt.Errorf("plan frames: %d sources but %d outputs", len(sources), len(outputs))
	}
	plans := make([]FramePlan, len(sources))
	for i, src := range sources {
		plans[i] = FramePlan{Index: i, Source: src, Output: outputs[i], Action: ActionDecode}
		if reuse && fsx.CheckNonEmpty(outputs[i]) == nil {
			plans[i].Action = ActionReuse
		}
	}
	return plans, nil
}

// Count returns how many plans decode and how many reuse.
func Count(plans []FramePlan) (decode, reuse int) {
	for _, p := range plans {
		if p.Action == ActionReuse {
			reuse++
		} else {
			decode++
		}
	}
	return decode, reuse
}

// Settings returns the encoder settings for a video format. Unknown formats
// fall back to ProRes HQ, matching ParseVideoFormat("prores").
func Settings(f config.VideoFormat) EncodeSettings {
	if !f.IsProRes() {
		return EncodeSettings{
			Codec:         "libx264",
			PixFmt:        "yuv420p",
			QualityOpts:   []string{"-preset", "medium", "-crf", "18"},
			ContainerOpts: []string{"-movflags", "+faststart"},
		}
	}
	profile, ok := proresProfiles[f.Variant()]
	if !ok {
		profile = proresProfiles["hq"]
	}
	return EncodeSettings{
		Codec:       "prores_ks",
		Profile:     profile,
		PixFmt:      "yuv422p10le",
		QualityOpts: []string{"-vendor", "apl0"},
	}
}
