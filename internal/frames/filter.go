package frames

import (
	"context"

	"go.uber.org/multierr"

	"github.com/gwlsn/webpanim/internal/logger"
)

// AnimationChecker reports whether an image file already holds an animation.
type AnimationChecker interface {
	IsAnimated(ctx context.Context, path string) (bool, error)
}

// FilterResult is the outcome of the animation filter.
type FilterResult struct {
	Kept     []Candidate
	Removed  []Candidate // Pre-animated files, in input order
	Warnings error       // Per-file failures, nil when every check succeeded
}

// CountIntrospectable returns how many candidates Filter will inspect.
func CountIntrospectable(candidates []Candidate) int {
	n := 0
	for _, c := range candidates {
		if IsAnimationFile(c.Path) {
			n++
		}
	}
	return n
}

// Filter drops candidates that are already animations. Only files with the
// animation extension are checked; everything else passes through untouched.
// A check that fails keeps the file and is reported in Warnings, unless
// opts.Strict is set, in which case the failure is returned as the error.
// The input slice is never modified.
func Filter(ctx context.Context, candidates []Candidate, checker AnimationChecker, opts Options) (*FilterResult, error) {
	// Indices of the candidates that need introspection
	var inspect []int
	for i, c := range candidates {
		if IsAnimationFile(c.Path) {
			inspect = append(inspect, i)
		}
	}

	animated := make([]bool, len(candidates))
	failures := make([]error, len(candidates))

	err := forEach(ctx, opts, len(inspect), func(ctx context.Context, j int) error {
		i := inspect[j]
		path := candidates[i].Path

		isAnim, err := checker.IsAnimated(ctx, path)
		if err != nil {
			failures[i] = fileError(path, err)
			logger.Warn("Animation check failed, keeping file", "file", path, "error", err)
			if opts.Strict {
				return failures[i]
			}
			return nil
		}
		animated[i] = isAnim
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &FilterResult{Kept: make([]Candidate, 0, len(candidates))}
	for i, c := range candidates {
		result.Warnings = multierr.Append(result.Warnings, failures[i])
		if animated[i] {
			c.PreAnimated = true
			result.Removed = append(result.Removed, c)
			continue
		}
		result.Kept = append(result.Kept, c)
	}

	return result, nil
}
