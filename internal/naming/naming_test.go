package naming

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/rawreel/internal/config"
)

func TestIntermediatePath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"/shots/A001_0001.dng", "/shots/processed/A001_0001.jpg"},
		{"/shots/A001_0002.DNG", "/shots/processed/A001_0002.jpg"},
		{"/shots/clip.v2.dng", "/shots/processed/clip.v2.jpg"},
		{"/shots/noext", "/shots/processed/noext.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, IntermediatePath(ProcessedDir("/shots"), tt.src))
		})
	}
}

func TestIntermediatePaths_Collisions(t *testing.T) {
	got := IntermediatePaths("/shots/processed", []string{
		"/shots/A001.DNG",
		"/shots/A001.dng",
		"/shots/B001.dng",
		"/shots/a001.Dng",
	})
	assert.Equal(t, []string{
		"/shots/processed/A001.jpg",
		"/shots/processed/A001 - dup1.jpg",
		"/shots/processed/B001.jpg",
		"/shots/processed/a001 - dup2.jpg",
	}, got)
}

func TestIntermediatePaths_Deterministic(t *testing.T) {
	src := []string{"/s/x.dng", "/s/X.DNG", "/s/y.dng"}
	assert.Equal(t, IntermediatePaths("/s/processed", src), IntermediatePaths("/s/processed", src))
}

func TestCollisionResolver_SameSourceKeepsPath(t *testing.T) {
	cr := NewCollisionResolver()
	assert.Equal(t, "/p/a.jpg", cr.Resolve("/s/a.dng", "/p/a.jpg"))
	assert.Equal(t, "/p/a.jpg", cr.Resolve("/s/a.dng", "/p/a.jpg"))
	assert.Equal(t, "/p/a - dup1.jpg", cr.Resolve("/s/a.DNG", "/p/a.jpg"))
	assert.Equal(t, "/p/a - dup1.jpg", cr.Resolve("/s/a.DNG", "/p/a.jpg"))
}

func TestCollisionResolver_CaseFolding(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		want   string
	}{
		{"same stem upper ext", "/p/A001.jpg", "/p/A001.jpg", "/p/A001 - dup1.jpg"},
		{"lower stem", "/p/A001.jpg", "/p/a001.jpg", "/p/a001 - dup1.jpg"},
		{"mixed ext", "/p/A001.jpg", "/p/A001.JPG", "/p/A001 - dup1.JPG"},
		{"distinct stems", "/p/A001.jpg", "/p/A002.jpg", "/p/A002.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := NewCollisionResolver()
			assert.Equal(t, tt.first, cr.Resolve("/s/one.dng", tt.first))
			assert.Equal(t, tt.want, cr.Resolve("/s/two.DNG", tt.second))
		})
	}
}

func TestCollisionResolver_Concurrent(t *testing.T) {
	cr := NewCollisionResolver()
	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cr.Resolve(fmt.Sprintf("/s/%d.dng", i), "/p/frame.jpg")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, r := range results {
		assert.False(t, seen[r], "duplicate %s", r)
		seen[r] = true
	}
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "/shots/flat_video.mp4", ArtifactPath("/shots", false, config.FormatH264))
	assert.Equal(t, "/shots/flat_video.mov", ArtifactPath("/shots", false, config.FormatProResLT))
	assert.Equal(t, "/shots/lut_applied_video.mp4", ArtifactPath("/shots", true, config.FormatH264))
	assert.Equal(t, "/shots/lut_applied_video.mov", ArtifactPath("/shots", true, config.FormatProResHQ))
}
