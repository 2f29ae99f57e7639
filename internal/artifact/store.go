// Package artifact maps videos to their canonical output paths, validates
// what is found there and publishes new artifacts atomically.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

// partialPrefix marks files that are still being written.
const partialPrefix = ".partial-"

// Store is a directory-backed artifact layout rooted at the output directory.
type Store struct {
	root string
}

// New creates a Store rooted at root. Nothing is created on disk until an
// artifact is published.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the output root.
func (s *Store) Root() string {
	return s.root
}

// Path returns the canonical location of kind for the video id.
func (s *Store) Path(kind Kind, id string) string {
	l, ok := layouts[kind]
	if !ok {
		panic(fmt.Sprintf("artifact: unknown kind %q", kind))
	}
	return filepath.Join(s.root, l.dir, id+l.suffix)
}

// Check validates the artifact at its canonical path. A missing file reports
// an error wrapping fs.ErrNotExist.
func (s *Store) Check(kind Kind, id string) error {
	return validate(kind, s.Path(kind, id))
}

// Satisfied reports whether every listed kind is present and valid for id.
func (s *Store) Satisfied(id string, kinds ...Kind) bool {
	for _, k := range kinds {
		if s.Check(k, id) != nil {
			return false
		}
	}
	return true
}

func validate(kind Kind, path string) error {
	l, ok := layouts[kind]
	if !ok {
		return fmt.Errorf("unknown artifact kind %q", kind)
	}
	if err := l.check(path); err != nil {
		return fmt.Errorf("%s %s: %w", kind, path, err)
	}
	return nil
}

// WriteFunc writes every requested artifact to the temp path it is given.
type WriteFunc func(tmp map[Kind]string) error

// Publish creates a uniquely named temp file beside each canonical path,
// lets write fill them, validates each one and renames them into place.
// If write fails or any output is invalid, every temp file is removed and
// nothing is published. Validation failures are reported as
// artifact_validation failures; write errors are returned unchanged.
func (s *Store) Publish(id string, kinds []Kind, write WriteFunc) error {
	tmp := make(map[Kind]string, len(kinds))
	cleanup := func() {
		for _, p := range tmp {
			os.Remove(p)
		}
	}

	for _, k := range kinds {
		dst := s.Path(k, id)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			cleanup()
			return fmt.Errorf("create artifact dir: %w", err)
		}
		f, err := os.CreateTemp(filepath.Dir(dst), partialPrefix+"*-"+filepath.Base(dst))
		if err != nil {
			cleanup()
			return fmt.Errorf("create temp artifact: %w", err)
		}
		f.Close()
		tmp[k] = f.Name()
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}

	for _, k := range kinds {
		if err := validate(k, tmp[k]); err != nil {
			cleanup()
			return failure.New(failure.ArtifactValidation, "publish "+string(k), err)
		}
	}

	var errs []error
	for _, k := range kinds {
		if err := os.Rename(tmp[k], s.Path(k, id)); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", k, err))
			continue
		}
		delete(tmp, k)
	}
	cleanup()

	return errors.Join(errs...)
}

// SweepPartials removes temp files left behind by a crashed run. It only
// touches files carrying the partial prefix.
func (s *Store) SweepPartials() (int, error) {
	dirs := map[string]bool{}
	for _, l := range layouts {
		dirs[filepath.Join(s.root, l.dir)] = true
	}

	removed := 0
	for dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, partialPrefix+"*"))
		if err != nil {
			return removed, err
		}
		for _, m := range matches {
			if err := os.Remove(m); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
