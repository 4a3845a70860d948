// Package fsx holds the filesystem helpers shared by every stage that writes
// an output: atomic writes, staged outputs for subprocesses, and the
// "present and non-empty" check used to validate results.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors returned by CheckNonEmpty.
var (
	ErrMissing = errors.New("output file missing")
	ErrEmpty   = errors.New("output file is empty")
)

// WriteAtomic writes path via a temporary sibling and a rename, so readers
// never observe a partially written file. The temp file lives in the same
// directory to keep the rename atomic.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

// Staged is an output path handed to an external tool. The tool writes Temp;
// Commit moves it onto Final, Discard removes it. The temp name keeps the
// final extension because ffmpeg picks the muxer from it.
type Staged struct {
	Final string
	Temp  string
}

// Stage reserves a temp sibling for final.
func Stage(final string) (*Staged, error) {
	dir, name := filepath.Split(final)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	f, err := os.CreateTemp(dir, "."+stem+".tmp-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", final, err)
	}
	tmp := f.Name()
	_ = f.Close()
	return &Staged{Final: final, Temp: tmp}, nil
}

// Commit validates the temp file and renames it onto Final.
func (s *Staged) Commit() error {
	if err := CheckNonEmpty(s.Temp); err != nil {
		s.Discard()
		return err
	}
	if err := os.Rename(s.Temp, s.Final); err != nil {
		s.Discard()
		return err
	}
	return nil
}

// Discard removes the temp file. Safe to call after Commit.
func (s *Staged) Discard() {
	_ = os.Remove(s.Temp)
}

// CheckNonEmpty returns ErrMissing or ErrEmpty (wrapped with the path) unless
// path is a regular file with at least one byte.
func CheckNonEmpty(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", path)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return nil
}

// Exists reports whether path exists (any type).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
