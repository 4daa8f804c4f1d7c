// Package service contains the background machinery of the app: the delayed
// task scheduler and the local staging area used while serving downloads
package service

import (
	"bitwise74/file-share/pkg/util"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var ErrOutsideStaging = errors.New("path is outside of the staging directory")

// Staging is a directory for transient copies of blobs. File names are random
// and never derived from user input.
type Staging struct {
	fs  afero.Fs
	dir string
}

func NewStaging(fsys afero.Fs, dir string) (*Staging, error) {
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory, %w", err)
	}

	return &Staging{fs: fsys, dir: filepath.Clean(dir)}, nil
}

func (s *Staging) Dir() string {
	return s.dir
}

func (s *Staging) Fs() afero.Fs {
	return s.fs
}

// Create opens a new empty staging file and returns it along with its path
func (s *Staging) Create() (afero.File, string, error) {
	name, err := util.GenerateToken(16)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate staging name, %w", err)
	}

	p := filepath.Join(s.dir, name)

	f, err := s.fs.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create staging file, %w", err)
	}

	return f, p, nil
}

func (s *Staging) contains(p string) bool {
	rel, err := filepath.Rel(s.dir, filepath.Clean(p))
	if err != nil {
		return false
	}

	return rel != "." && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator)
}

// Remove deletes a staging file. Missing files are not an error.
func (s *Staging) Remove(p string) error {
	if !s.contains(p) {
		return ErrOutsideStaging
	}

	err := s.fs.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// Sweep removes staging files last modified more than maxAge ago and returns
// how many were removed
func (s *Staging) Sweep(maxAge time.Duration) (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging directory, %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	var errs []error
	for _, e := range entries {
		if e.IsDir() || e.ModTime().After(cutoff) {
			continue
		}

		if err := s.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}

		removed++
	}

	return removed, errors.Join(errs...)
}
