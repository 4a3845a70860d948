package lut

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityCube renders an identity LUT of size n with the given header.
func identityCube(n int, header string) string {
	var b strings.Builder
	b.WriteString(header)
	for bl := 0; bl < n; bl++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				d := float64(n - 1)
				fmt.Fprintf(&b, "%.6f %.6f %.6f\n", float64(r)/d, float64(g)/d, float64(bl)/d)
			}
		}
	}
	return b.String()
}

func TestParse_Valid(t *testing.T) {
	src := identityCube(3, "# generated\nTITLE \"Romeo & Juliette\"\nLUT_3D_SIZE 3\nDOMAIN_MIN 0 0 0\nDOMAIN_MAX 1 1 1\n\n")
	tbl, err := Parse("romeo.cube", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Romeo & Juliette", tbl.Title)
	assert.Equal(t, 3, tbl.Size)
	assert.Equal(t, 27, tbl.Rows)
	assert.Equal(t, [3]float64{1, 1, 1}, tbl.DomainMax)
	assert.Equal(t, `"Romeo & Juliette" 3x3x3`, tbl.Summary())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target error
		msg    string
	}{
		{"no size", "0 0 0\n", ErrNoSize, ""},
		{"empty", "", ErrNoSize, ""},
		{"too few rows", "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n", ErrRowCount, "have 2, want 8"},
		{"too many rows", identityCube(2, "LUT_3D_SIZE 2\n") + "0 0 0\n", ErrRowCount, ""},
		{"one-d", "LUT_1D_SIZE 1024\n", ErrNot3D, ""},
		{"inverted domain", identityCube(2, "LUT_3D_SIZE 2\nDOMAIN_MIN 1 1 1\nDOMAIN_MAX 0 0 0\n"), ErrBadDomain, ""},
		{"size out of range", "LUT_3D_SIZE 1\n", nil, "out of range"},
		{"bad row", "LUT_3D_SIZE 2\n0 0\n", nil, "table row"},
		{"non numeric row", "LUT_3D_SIZE 2\n0 x 0\n", nil, "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.cube", strings.NewReader(tt.src))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestParse_SyntaxErrorLine(t *testing.T) {
	_, err := Parse("x.cube", strings.NewReader("TITLE \"a\"\nLUT_3D_SIZE 999\n"))
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}

func TestParse_InputRangeAndVendorKeys(t *testing.T) {
	src := identityCube(2, "LUT_3D_SIZE 2\nLUT_3D_INPUT_RANGE 0 4\nLUT_IN_VIDEO_RANGE\n")
	tbl, err := Parse("x.cube", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{4, 4, 4}, tbl.DomainMax)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.cube"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load(dir)
	assert.Error(t, err)

	path := filepath.Join(dir, "LUT_ROMEO&JULIETTE.cube")
	require.NoError(t, os.WriteFile(path, []byte(identityCube(2, "LUT_3D_SIZE 2\n")), 0o644))
	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Path)
	assert.Equal(t, `"untitled" 2x2x2`, tbl.Summary())
}
