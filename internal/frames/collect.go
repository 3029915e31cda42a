package frames

import (
	"os"
	"path/filepath"
	"strings"
)

// CheckDir returns a usage error unless dir exists and is a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return usageError("directory specified %q is not a valid directory", dir)
	}
	if !info.IsDir() {
		return usageError("directory specified %q is not a valid directory", dir)
	}
	return nil
}

// Collect returns the image files directly inside dir. Extensions match
// case-insensitively, hidden files and subdirectories are skipped, and each
// path appears once. An empty directory yields an empty slice.
func Collect(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	candidates := make([]Candidate, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !IsImageFile(name) {
			continue
		}

		path := filepath.Join(dir, name)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		candidates = append(candidates, Candidate{Path: path})
	}

	return candidates, nil
}
