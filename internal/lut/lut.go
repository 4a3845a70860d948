// Package lut loads and validates Adobe/Resolve .cube 3-D lookup tables.
//
// The table values are not interpolated here; ffmpeg's lut3d filter applies
// them. Loading exists so a missing or malformed LUT fails before any
// transcode starts, and so the header can be reported.
package lut

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// Sentinel errors.
var (
	ErrNotFound  = errors.New("LUT file not found")
	ErrNoSize    = errors.New("missing LUT_3D_SIZE")
	ErrNot3D     = errors.New("1-D LUTs are not supported")
	ErrRowCount  = errors.New("wrong number of table rows")
	ErrBadDomain = errors.New("invalid domain")
)

// Size limits accepted for LUT_3D_SIZE.
const (
	MinSize = 2
	MaxSize = 256
)

// Table is a validated 3-D LUT. It is never mutated after Load.
type Table struct {
	Path      string
	Title     string
	Size      int
	DomainMin [3]float64
	DomainMax [3]float64
	Rows      int
}

// Summary is a one-line description for logs.
func (t *Table) Summary() string {
	title := t.Title
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%q %dx%dx%d", title, t.Size, t.Size, t.Size)
}

// SyntaxError points at the offending line of a .cube file.
type SyntaxError struct {
	Path string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Load opens path and validates it as a 3-D .cube LUT.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open LUT: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat LUT: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("LUT path %s is a directory", path)
	}
	return Parse(path, f)
}

// Parse validates a .cube stream. path is only used in errors.
func Parse(path string, r io.Reader) (*Table, error) {
	t := &Table{
		Path:      path,
		DomainMax: [3]float64{1, 1, 1},
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		key := strings.ToUpper(fields[0])

		switch {
		case key == "TITLE":
			t.Title = strings.Trim(strings.TrimSpace(text[len(fields[0]):]), `"`)
		case key == "LUT_3D_SIZE":
			if t.Rows > 0 {
				return nil, &SyntaxError{path, line, "LUT_3D_SIZE after table data"}
			}
			if len(fields) != 2 {
				return nil, &SyntaxError{path, line, "LUT_3D_SIZE needs one value"}
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < MinSize || n > MaxSize {
				return nil, &SyntaxError{path, line, fmt.Sprintf("LUT_3D_SIZE %q out of range %d-%d", fields[1], MinSize, MaxSize)}
			}
			t.Size = n
		case key == "LUT_1D_SIZE":
			return nil, fmt.Errorf("%s: %w", path, ErrNot3D)
		case key == "DOMAIN_MIN" || key == "DOMAIN_MAX":
			v, err := triple(fields[1:])
			if err != nil {
				return nil, &SyntaxError{path, line, key + ": " + err.Error()}
			}
			if key == "DOMAIN_MIN" {
				t.DomainMin = v
			} else {
				t.DomainMax = v
			}
		case key == "LUT_3D_INPUT_RANGE":
			if len(fields) != 3 {
				return nil, &SyntaxError{path, line, "LUT_3D_INPUT_RANGE needs two values"}
			}
			lo, err1 := strconv.ParseFloat(fields[1], 64)
			hi, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, &SyntaxError{path, line, "LUT_3D_INPUT_RANGE is not numeric"}
			}
			t.DomainMin = [3]float64{lo, lo, lo}
			t.DomainMax = [3]float64{hi, hi, hi}
		case isNumeric(key):
			if t.Size == 0 {
				return nil, fmt.Errorf("%s:%d: %w before table data", path, line, ErrNoSize)
			}
			if _, err := triple(fields); err != nil {
				return nil, &SyntaxError{path, line, "table row: " + err.Error()}
			}
			t.Rows++
		default:
			// Vendor keywords (e.g. LUT_IN_VIDEO_RANGE) are ignored like ffmpeg does.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read LUT %s: %w", path, err)
	}

	if t.Size == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSize)
	}
	if want := t.Size * t.Size * t.Size; t.Rows != want {
		return nil, fmt.Errorf("%s: %w: have %d, want %d for size %d", path, ErrRowCount, t.Rows, want, t.Size)
	}
	for i := 0; i < 3; i++ {
		if t.DomainMin[i] >= t.DomainMax[i] {
			return nil, fmt.Errorf("%s: %w: min %v must be below max %v", path, ErrBadDomain, t.DomainMin, t.DomainMax)
		}
	}
	return t, nil
}

func triple(fields []string) ([3]float64, error) {
	var v [3]float64
	if len(fields) != 3 {
		return v, fmt.Errorf("want 3 values, got %d", len(fields))
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, fmt.Errorf("%q is not a number", f)
		}
		v[i] = x
	}
	return v, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
