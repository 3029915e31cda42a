package frames

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/gwlsn/webpanim/internal/logger"
)

// ImageConverter writes a normalized lossless copy of one image.
type ImageConverter interface {
	Convert(ctx context.Context, in, out string, g Geometry) error
}

// NormalizeResult is the outcome of geometry normalization.
type NormalizeResult struct {
	Candidates []Candidate // Successfully normalized, in input order
	TempDir    string
	Warnings   error
}

// NormalizedPaths maps each candidate to its copy inside tempDir: base name
// with the extension replaced by AnimationExt. When two sources share a base
// name (a.png, a.jpg) the later one keeps its original extension in the
// name so that no two frames write the same file.
func NormalizedPaths(candidates []Candidate, tempDir string) []string {
	out := make([]string, len(candidates))
	used := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		base := filepath.Base(c.Path)
		ext := filepath.Ext(base)
		name := strings.TrimSuffix(base, ext) + AnimationExt
		if _, taken := used[name]; taken {
			name = strings.TrimSuffix(base, ext) + "_" + strings.TrimPrefix(ext, ".") + AnimationExt
		}
		used[name] = struct{}{}
		out[i] = filepath.Join(tempDir, name)
	}
	return out
}

// PlanNormalize returns what Normalize would produce if every conversion
// succeeded. Nothing is created or written.
func PlanNormalize(candidates []Candidate, dir string, g Geometry) *NormalizeResult {
	tempDir := filepath.Join(dir, g.DirName())
	targets := NormalizedPaths(candidates, tempDir)

	result := &NormalizeResult{
		Candidates: make([]Candidate, len(candidates)),
		TempDir:    tempDir,
	}
	for i, c := range candidates {
		c.NormalizedPath = targets[i]
		result.Candidates[i] = c
	}
	return result
}

// Normalize converts every candidate with conv into a temp subdirectory of
// dir named after g, and points each candidate's working path at its copy.
// A conversion that fails drops that frame and is reported in Warnings;
// with opts.Strict it aborts instead.
func Normalize(ctx context.Context, candidates []Candidate, dir string, g Geometry, conv ImageConverter, opts Options) (*NormalizeResult, error) {
	tempDir := filepath.Join(dir, g.DirName())
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	targets := NormalizedPaths(candidates, tempDir)
	failures := make([]error, len(candidates))

	err := forEach(ctx, opts, len(candidates), func(ctx context.Context, i int) error {
		src := candidates[i].Path
		if err := conv.Convert(ctx, src, targets[i], g); err != nil {
			failures[i] = fileError(src, err)
			logger.Warn("Normalization failed, dropping frame", "file", src, "error", err)
			if opts.Strict {
				return failures[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &NormalizeResult{
		Candidates: make([]Candidate, 0, len(candidates)),
		TempDir:    tempDir,
	}
	for i, c := range candidates {
		if failures[i] != nil {
			result.Warnings = multierr.Append(result.Warnings, failures[i])
			continue
		}
		c.NormalizedPath = targets[i]
		result.Candidates = append(result.Candidates, c)
	}

	return result, nil
}
