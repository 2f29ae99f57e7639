// Package media identifies input videos and assigns their stable IDs.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the recognized video file extensions.
var Extensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

// Video is one input file and the ID that keys its artifacts.
type Video struct {
	Path string
	ID   string
}

// NewVideo builds a Video whose ID is the file stem.
func NewVideo(path string) Video {
	return Video{Path: path, ID: Stem(path)}
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsVideoFile reports whether path has a recognized video extension.
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover resolves input to the list of videos to process. A file is
// returned as-is; a directory yields its top-level video files sorted by name.
func Discover(input string) ([]Video, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if !info.IsDir() {
		if !IsVideoFile(input) {
			return nil, fmt.Errorf("not a supported video file: %s", input)
		}
		return []Video{NewVideo(input)}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if IsVideoFile(e.Name()) {
			paths = append(paths, filepath.Join(input, e.Name()))
		}
	}
	sort.Strings(paths)

	return AssignIDs(paths), nil
}

// AssignIDs builds videos for paths with IDs that are unique across the set.
// A file keeps its bare stem when no other file shares it. Files sharing a
// stem become <stem>_<ext>, and if that is still taken (by another file's
// stem or a case-only extension difference) a numeric suffix is added.
func AssignIDs(paths []string) []Video {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[Stem(p)]++
	}

	videos := make([]Video, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, p := range paths {
		if stem := Stem(p); counts[stem] == 1 {
			videos[i] = Video{Path: p, ID: stem}
			taken[stem] = true
		}
	}

	for i, p := range paths {
		if videos[i].ID != "" {
			continue
		}
		base := CollisionID(p)
		id := base
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		videos[i] = Video{Path: p, ID: id}
		taken[id] = true
	}
	return videos
}

// CollisionID is the ID used for a file whose stem is shared with another input.
func CollisionID(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Stem(path) + "_" + ext
}

// Lookup returns the video for path as Discover(dir) would identify it, so a
// file picked up later gets the same ID a batch run would give it.
func Lookup(dir, path string) (Video, error) {
	videos, err := Discover(dir)
	if err != nil {
		return Video{}, err
	}
	for _, v := range videos {
		if filepath.Clean(v.Path) == filepath.Clean(path) {
			return v, nil
		}
	}
	return Video{}, fmt.Errorf("%s is not a video in %s", path, dir)
}
