package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/gwlsn/webpanim/internal/config"
	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/logger"
	"github.com/gwlsn/webpanim/internal/pipeline"
	"github.com/gwlsn/webpanim/internal/store"
)

// recording tracks one run for the history database. A zero recording
// (history disabled) ignores finish.
type recording struct {
	path    string
	id      string
	started time.Time
}

func startRecording(cfg *config.Config) *recording {
	return &recording{
		path:    cfg.HistoryPath,
		id:      uuid.New().String(),
		started: time.Now(),
	}
}

// finish writes the run to the history database. Failures are logged only;
// history never changes the outcome of a run.
func (r *recording) finish(report *pipeline.Report, req pipeline.Request, runErr error) {
	if r.path == "" {
		return
	}

	db, err := store.NewSQLiteStore(r.path)
	if err != nil {
		logger.Warn("Could not open history database", "path", r.path, "error", err)
		return
	}
	defer db.Close()

	if err := db.SaveRun(newRun(r.id, r.started, report, req, runErr)); err != nil {
		logger.Warn("Could not record run", "path", db.Path(), "error", err)
		return
	}
	logger.Debug("Run recorded", "id", r.id, "path", db.Path())
}

// newRun converts a pipeline report into a history row.
func newRun(id string, started time.Time, report *pipeline.Report, req pipeline.Request, runErr error) *store.Run {
	run := &store.Run{
		ID:          id,
		SourceDir:   req.Dir,
		VideoPath:   req.Video,
		Status:      store.StatusComplete,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	switch {
	case runErr != nil:
		run.Status = store.StatusFailed
		run.Error = runErr.Error()
	case req.DryRun:
		run.Status = store.StatusDryRun
	}

	if report == nil {
		return run
	}
	run.SourceDir = report.Source.Dir
	run.OutputPath = report.Output
	run.Collected = report.Collected
	run.Removed = len(report.Removed)
	run.Frames = report.Frames
	run.DelayMS = report.DelayMS
	run.FPS = report.Source.FPS
	run.Warnings = len(multierr.Errors(report.Warnings))
	if run.Status == store.StatusComplete {
		if info, err := os.Stat(report.Output); err == nil {
			run.OutputSize = info.Size()
		}
	}
	return run
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent runs recorded in the history database",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of runs to show"},
			&cli.StringFlag{Name: "id", Usage: "show the details of one run"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _ := loadConfig(cmd)
			if cfg.HistoryPath == "" {
				return errors.New("history is disabled: set history_path in the config file")
			}

			db, err := store.NewSQLiteStore(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer db.Close()

			w := cmd.Root().Writer
			if id := cmd.String("id"); id != "" {
				return printRun(w, db, id)
			}
			return printRuns(w, db, cmd.Int("limit"))
		},
	}
}

// printRuns lists the latest runs followed by totals.
func printRuns(w io.Writer, db store.Store, limit int) error {
	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	stats, err := db.Stats()
	if err != nil {
		return err
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %-8s  %4d frames  %-9s  %s -> %s\n",
			run.ID[:min(8, len(run.ID))], humanize.Time(run.StartedAt), statusText(run.Status), run.Frames,
			humanize.Bytes(uint64(run.OutputSize)), run.SourceDir, run.OutputPath)
		if run.Error != "" {
			fmt.Fprintf(w, "    %s\n", run.Error)
		}
	}
	fmt.Fprintf(w, "%d runs (%d complete, %d failed), %s frames, %s written\n",
		stats.Total, stats.Complete, stats.Failed,
		humanize.Comma(stats.Frames), humanize.Bytes(uint64(stats.OutputSize)))
	return nil
}

// printRun shows every recorded field of one run.
func printRun(w io.Writer, db store.Store, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: no run with id %q", frames.ErrUsage, id)
	}

	fmt.Fprintf(w, "id:        %s\n", run.ID)
	fmt.Fprintf(w, "status:    %s\n", statusText(run.Status))
	fmt.Fprintf(w, "source:    %s\n", run.SourceDir)
	if run.VideoPath != "" {
		fmt.Fprintf(w, "video:     %s (%d fps)\n", run.VideoPath, run.FPS)
	}
	fmt.Fprintf(w, "output:    %s (%s)\n", run.OutputPath, humanize.Bytes(uint64(run.OutputSize)))
	fmt.Fprintf(w, "frames:    %d of %d collected, %d animated removed, %d ms each\n",
		run.Frames, run.Collected, run.Removed, run.DelayMS)
	fmt.Fprintf(w, "warnings:  %d\n", run.Warnings)
	fmt.Fprintf(w, "started:   %s (%s)\n", run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
	fmt.Fprintf(w, "took:      %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	if run.Error != "" {
		fmt.Fprintf(w, "error:     %s\n", run.Error)
	}
	return nil
}

func statusText(s store.Status) string {
	switch s {
	case store.StatusFailed:
		return color.New(color.FgRed).Sprint(string(s))
	case store.StatusComplete:
		return color.New(color.FgGreen).Sprint(string(s))
	}
	return string(s)
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the config file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config file with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := config.ResolvePath(cmd.Root().String("config"))
					if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", path)
					}
					if err := config.DefaultConfig().Save(path); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "Wrote %s\n", path)
					return nil
				},
			},
		},
	}
}
