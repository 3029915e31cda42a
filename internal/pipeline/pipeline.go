// Package pipeline runs the frame pipeline end to end:
// resolve, collect, filter, normalize, sequence and encode.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/gwlsn/webpanim/internal/ffmpeg"
	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/logger"
	"github.com/gwlsn/webpanim/internal/webp"
)

// FrameExtractor splits a video into still frames.
type FrameExtractor interface {
	Extract(ctx context.Context, videoPath, dir string) (*ffmpeg.ExtractResult, error)
}

// AnimationEncoder assembles the final animation.
type AnimationEncoder interface {
	Encode(ctx context.Context, args []string) error
}

// ProgressFactory starts a progress display for a per-file stage and
// returns the callback to feed it plus a function that closes it.
type ProgressFactory func(stage string, total int) (frames.ProgressFunc, func())

// Request holds everything the user asked for.
type Request struct {
	Dir      string
	Video    string
	Outfile  string
	Settings frames.Settings
	Geometry frames.Geometry

	Workers int
	Strict  bool // Per-file tool failures abort the run
	Cleanup bool // Remove the normalization directory after a successful encode
	DryRun  bool // Print the cwebp and img2webp commands instead of running them
	Verbose bool
}

// Deps are the external collaborators. Extractor and Converter may be nil
// when the request does not need them.
type Deps struct {
	Extractor FrameExtractor
	Checker   frames.AnimationChecker
	Converter frames.ImageConverter
	Encoder   AnimationEncoder
	Progress  ProgressFactory // Optional
	Out       io.Writer       // Status lines; os.Stdout when nil
}

// Report describes a finished (or failed) run.
type Report struct {
	Source    frames.Source
	Collected int
	Removed   []string // Pre-animated files left out
	Frames    int      // Frames handed to img2webp
	DelayMS   int
	Output    string
	Args      []string // img2webp arguments
	TempDir   string
	Warnings  error // Per-file failures that did not stop the run
	Duration  time.Duration
}

// Run executes the pipeline. The returned report is non-nil whenever the
// run got as far as resolving its source, even if err is set.
func Run(ctx context.Context, req Request, deps Deps) (*Report, error) {
	start := time.Now()
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	report := &Report{Source: frames.Source{Dir: dir, Video: req.Video}}
	defer func() { report.Duration = time.Since(start) }()

	opts := frames.Options{Workers: req.Workers, Strict: req.Strict}

	// Resolve
	if req.Video != "" {
		res, err := deps.Extractor.Extract(ctx, req.Video, dir)
		if err != nil {
			if req.Strict || res == nil || ctx.Err() != nil {
				return report, fmt.Errorf("failed to extract frames: %w", err)
			}
			logger.Warn("FFmpeg reported an error, continuing with extracted frames", "video", req.Video, "error", err)
			report.Warnings = multierr.Append(report.Warnings, fmt.Errorf("%s: %w", req.Video, err))
		}
		report.Source.FPS = res.FPS
		if req.Verbose {
			if res.FPS > 0 {
				fmt.Fprintf(out, "Video FPS: %d\n", res.FPS)
			}
		} else {
			fmt.Fprintf(out, "Video processed %q -> %q\n", req.Video, dir)
		}
	} else if err := frames.CheckDir(dir); err != nil {
		return report, err
	}

	// Collect
	candidates, err := frames.Collect(dir)
	if err != nil {
		return report, fmt.Errorf("failed to read directory: %w", err)
	}
	report.Collected = len(candidates)
	logger.Debug("Collected images", "dir", dir, "count", len(candidates))

	// Filter
	filterOpts := opts
	done := startProgress(deps.Progress, "Checking", frames.CountIntrospectable(candidates), &filterOpts)
	filtered, err := frames.Filter(ctx, candidates, deps.Checker, filterOpts)
	done()
	if err != nil {
		return report, err
	}
	report.Warnings = multierr.Append(report.Warnings, filtered.Warnings)
	for _, c := range filtered.Removed {
		report.Removed = append(report.Removed, c.Path)
		if req.Verbose {
			fmt.Fprintf(out, "removed animated WebP file %q from file list\n", filepath.Base(c.Path))
		}
	}
	candidates = filtered.Kept

	// Normalize
	if req.Geometry.Active() && req.DryRun {
		plan := frames.PlanNormalize(candidates, dir, req.Geometry)
		for _, c := range plan.Candidates {
			fmt.Fprintln(out, frames.FormatCommand("cwebp", webp.ConvertArgs(c.Path, c.NormalizedPath, req.Geometry), 0))
		}
		report.TempDir = plan.TempDir
		candidates = plan.Candidates
	} else if req.Geometry.Active() {
		normOpts := opts
		done := startProgress(deps.Progress, "Normalizing", len(candidates), &normOpts)
		if req.Verbose {
			fmt.Fprintf(out, "normalizing %d files into %q\n", len(candidates), filepath.Join(dir, req.Geometry.DirName()))
		}
		normalized, err := frames.Normalize(ctx, candidates, dir, req.Geometry, deps.Converter, normOpts)
		done()
		if err != nil {
			return report, err
		}
		report.TempDir = normalized.TempDir
		report.Warnings = multierr.Append(report.Warnings, normalized.Warnings)
		candidates = normalized.Candidates
	}

	// Sequence
	paths := frames.Sort(frames.WorkingPaths(candidates), req.Settings.Reverse)
	fmt.Fprintf(out, "Directory %q found %d files\n", dir, len(paths))
	if req.Verbose {
		for _, p := range paths {
			fmt.Fprintf(out, " -> %s\n", p)
		}
	}
	if len(paths) == 0 {
		logger.Warn("No frames to encode", "dir", dir)
	}

	report.Output = frames.ResolveOutput(req.Outfile, dir)
	job := frames.BuildJob(paths, report.Source.FPS, req.Settings, report.Output)
	report.Frames = len(job.Frames)
	report.DelayMS = frames.ResolveDelay(report.Source.FPS, req.Settings.DelayMS)
	report.Args = frames.BuildArgs(job)

	// Encode
	if req.DryRun {
		fmt.Fprintln(out, frames.FormatCommand("img2webp", report.Args, 0))
		return report, nil
	}
	if req.Verbose {
		fmt.Fprintf(out, "Calling: %s\n", frames.FormatCommand("img2webp", report.Args, frames.CommandEchoLimit))
	} else {
		fmt.Fprintln(out, "Calling img2webp")
	}

	if err := deps.Encoder.Encode(ctx, report.Args); err != nil {
		return report, err
	}

	if req.Cleanup && report.TempDir != "" {
		if err := os.RemoveAll(report.TempDir); err != nil {
			logger.Warn("Could not remove temp directory", "path", report.TempDir, "error", err)
		}
	}

	return report, nil
}

// startProgress wires a progress display into opts and returns its closer.
func startProgress(factory ProgressFactory, stage string, total int, opts *frames.Options) func() {
	if factory == nil || total == 0 {
		return func() {}
	}
	fn, done := factory(stage, total)
	opts.Progress = fn
	return done
}
