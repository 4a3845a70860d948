package naming

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/rawreel/internal/config"
)

// ProcessedDirName is the cache directory created inside the input folder.
const ProcessedDirName = "processed"

// IntermediateExt is the extension of every intermediate frame.
const IntermediateExt = ".jpg"

// Artifact base names, without extension.
const (
	FlatBase   = "flat_video"
	GradedBase = "lut_applied_video"
)

// ProcessedDir returns <inputDir>/processed.
func ProcessedDir(inputDir string) string {
	return filepath.Join(inputDir, ProcessedDirName)
}

// IntermediatePath is the canonical JPEG path for one source, before
// collision handling.
func IntermediatePath(processedDir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(processedDir, stem+IntermediateExt)
}

// IntermediatePaths maps sources (already in discovery order) onto unique
// intermediate paths. The i-th output always belongs to the i-th source.
func IntermediatePaths(processedDir string, sources []string) []string {
	cr := NewCollisionResolver()
	out := make([]string, len(sources))
	for i, src := range sources {
		out[i] = cr.Resolve(src, IntermediatePath(processedDir, src))
	}
	return out
}

// ArtifactPath returns the flat or graded video path inside inputDir; the
// extension follows the format's container.
func ArtifactPath(inputDir string, graded bool, f config.VideoFormat) string {
	base := FlatBase
	if graded {
		base = GradedBase
	}
	return filepath.Join(inputDir, base+f.Ext())
}
