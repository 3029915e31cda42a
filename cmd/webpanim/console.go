package main

import (
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"

	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/pipeline"
)

// newProgressFactory returns a progress bar factory for w, or nil when w
// is not a terminal.
func newProgressFactory(w *os.File) pipeline.ProgressFactory {
	if !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()) {
		return nil
	}
	return func(stage string, total int) (frames.ProgressFunc, func()) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(stage),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
		return func(done, total int) { _ = bar.Add(1) }, func() { _ = bar.Finish() }
	}
}

// printSummary reports warnings and, on success, what was written.
func printSummary(w io.Writer, report *pipeline.Report, dryRun bool, runErr error) {
	if report == nil {
		return
	}

	warn := color.New(color.FgYellow)
	for _, err := range multierr.Errors(report.Warnings) {
		warn.Fprintf(w, "warning: %v\n", err)
	}

	if runErr != nil || dryRun {
		return
	}

	size := "unknown size"
	if info, err := os.Stat(report.Output); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	color.New(color.FgGreen).Fprintf(w, "Wrote %s (%d frames, %d ms/frame, %s) in %s\n",
		report.Output, report.Frames, report.DelayMS, size, report.Duration.Round(time.Millisecond))
}
