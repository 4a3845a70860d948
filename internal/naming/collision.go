package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output paths claimed by source frames and resolves
// duplicates by appending " - dupN" suffixes. DNG stems that differ only in
// case (A001.dng, A001.DNG, a001.dng) produce intermediates that would
// overwrite each other on case-insensitive filesystems, so paths are folded
// before comparison.
// All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // folded output path → source that owns it
	counters map[string]int    // folded requested path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the output path for source. If requested is unclaimed (or
// already owned by source) it is returned as-is; otherwise the next free
// " - dupN" variant is claimed and returned.
func (cr *CollisionResolver) Resolve(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := fold(requested)
	if owner, ok := cr.owners[key]; !ok || owner == source {
		cr.owners[key] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	n := cr.counters[key]
	if n == 0 {
		n = 1
	}
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, n, ext))
		ck := fold(candidate)
		if owner, ok := cr.owners[ck]; !ok || owner == source {
			cr.counters[key] = n + 1
			cr.owners[ck] = source
			return candidate
		}
		n++
	}
}

func fold(p string) string { return strings.ToLower(filepath.Clean(p)) }
