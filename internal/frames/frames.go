// Package frames selects, filters, normalizes and orders the still images
// that become an animation, and builds the img2webp command for them.
package frames

import (
	"path/filepath"
	"strings"
)

// AnimationExt is the extension of the output format. Files with this
// extension may already be animations and must be introspected.
const AnimationExt = ".webp"

// ImageExtensions lists the extensions collected from a source directory.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".webp"}

// Source is a resolved directory of frames.
type Source struct {
	Dir   string // Absolute path
	Video string // Video the frames were extracted from, if any
	FPS   int    // Source frame rate, 0 when unknown
}

// Candidate is an image file considered for the animation.
type Candidate struct {
	Path           string
	PreAnimated    bool
	NormalizedPath string // Set by Normalize
}

// WorkingPath is the file downstream stages should read.
func (c Candidate) WorkingPath() string {
	if c.NormalizedPath != "" {
		return c.NormalizedPath
	}
	return c.Path
}

// Frame is one entry of an encode job.
type Frame struct {
	Path     string
	DelayMS  int
	Lossy    bool
	Lossless bool
	Quality  float64
	Method   int
}

// Job is everything img2webp needs for one animation. Delay and quality
// settings are identical for every frame.
type Job struct {
	Loop   int
	Frames []Frame
	Output string
}

// IsImageFile returns true if the file extension is a collectable image
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, ie := range ImageExtensions {
		if ext == ie {
			return true
		}
	}
	return false
}

// IsAnimationFile returns true if the file has the animation extension
func IsAnimationFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), AnimationExt)
}

// WorkingPaths returns the working path of every candidate, in order.
func WorkingPaths(candidates []Candidate) []string {
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.WorkingPath()
	}
	return paths
}
