package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	webpanim "github.com/gwlsn/webpanim"
	"github.com/gwlsn/webpanim/internal/config"
	"github.com/gwlsn/webpanim/internal/ffmpeg"
	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/logger"
	"github.com/gwlsn/webpanim/internal/pipeline"
	"github.com/gwlsn/webpanim/internal/tools"
	"github.com/gwlsn/webpanim/internal/webp"
)

// Exit codes other than those passed through from img2webp
const (
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func init() {
	// -v is --verbose, so --version gets no short alias
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newCommand().Run(ctx, os.Args)
	stop()

	if err != nil {
		logger.Error("webpanim failed", "error", err)
		if logger.Log == nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
		}
	}
	os.Exit(exitCode(err))
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "webpanim",
		Version:   webpanim.Version,
		Usage:     "Turn a directory of images, or a video, into an animated WebP",
		ArgsUsage: "<directory> <outfile>",
		Description: "outfile may start with #dir/ to place the animation inside the image directory.\n" +
			"Requires img2webp and webpinfo (libwebp), cwebp for --resize/--crop and ffmpeg for --video.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "video", Usage: "video file to split into frames (written to <directory>) first"},
			&cli.IntFlag{Name: "delay", Aliases: []string{"d", "frmdly"}, Value: -1, Usage: "frame delay in milliseconds (default 100, or the video frame rate)"},
			&cli.BoolFlag{Name: "lossy", Usage: "use lossy compression"},
			&cli.BoolFlag{Name: "lossless", Usage: "use lossless compression"},
			&cli.Float64Flag{Name: "quality", Aliases: []string{"q"}, Value: 75, Usage: "quality 0 to 100"},
			&cli.IntFlag{Name: "method", Aliases: []string{"m"}, Value: 4, Usage: "compression method 0 to 6"},
			&cli.IntFlag{Name: "loop", Value: 0, Usage: "times to loop, 0 = infinite"},
			&cli.BoolFlag{Name: "sortrev", Usage: "reverse the file sort"},
			&cli.IntFlag{Name: "skip", Value: 0, Usage: "keep only every Nth frame"},
			&cli.StringFlag{Name: "resize", Usage: "resize frames to `WxH`"},
			&cli.StringFlag{Name: "crop", Usage: "crop frames to `X,Y,W,H`"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "verbose messages"},
			&cli.StringFlag{Name: "config", Usage: "path to config file (default: $WEBPANIM_CONFIG or " + config.DefaultPath + ")"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "concurrent webpinfo/cwebp processes (default from config)"},
			&cli.BoolFlag{Name: "strict", Usage: "abort when a per-file webpinfo/cwebp/ffmpeg call fails"},
			&cli.BoolFlag{Name: "cleanup", Usage: "remove the resize/crop temp directory after encoding"},
			&cli.BoolFlag{Name: "dry-run", Usage: "print the img2webp command instead of running it"},
		},
		Commands: []*cli.Command{
			historyCommand(),
			configCommand(),
		},
		Action: runAction,
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return fmt.Errorf("%w: %v", frames.ErrUsage, err)
		},
		// Exit codes are mapped in main
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("%w: expected <directory> <outfile>, got %d arguments", frames.ErrUsage, cmd.NArg())
	}

	cfg, cfgPath := loadConfig(cmd)
	verbose := cmd.Bool("verbose")
	if verbose {
		logger.Init("debug")
	} else {
		logger.Init(cfg.LogLevel)
	}
	logger.Debug("Configuration loaded", "path", cfgPath)

	// Everything that can be rejected without running a tool is checked first
	geometry, err := frames.ParseGeometry(cmd.String("resize"), cmd.String("crop"))
	if err != nil {
		return err
	}
	settings := frames.Settings{
		DelayMS:  cmd.Int("delay"),
		Lossy:    cmd.Bool("lossy"),
		Lossless: cmd.Bool("lossless"),
		Quality:  cmd.Float64("quality"),
		Method:   cmd.Int("method"),
		Loop:     cmd.Int("loop"),
		Reverse:  cmd.Bool("sortrev"),
		Skip:     cmd.Int("skip"),
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	video := cmd.String("video")
	toolset, err := requireTools(cfg, video != "", geometry.Active())
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if cmd.IsSet("jobs") {
		workers = cmd.Int("jobs")
	}

	req := pipeline.Request{
		Dir:      cmd.Args().Get(0),
		Video:    video,
		Outfile:  cmd.Args().Get(1),
		Settings: settings,
		Geometry: geometry,
		Workers:  frames.ClampWorkerCount(workers),
		Strict:   cmd.Bool("strict"),
		Cleanup:  cmd.Bool("cleanup") || !cfg.KeepTemp,
		DryRun:   cmd.Bool("dry-run"),
		Verbose:  verbose,
	}

	runner := tools.ExecRunner{}
	deps := pipeline.Deps{
		Extractor: ffmpeg.NewExtractor(toolset.Path(tools.FFmpeg), runner),
		Checker:   webp.NewInspector(toolset.Path(tools.WebPInfo), runner),
		Converter: webp.NewConverter(toolset.Path(tools.CWebP), runner),
		Encoder:   webp.NewEncoder(toolset.Path(tools.Img2WebP), runner),
		Out:       cmd.Root().Writer,
	}
	if !verbose {
		deps.Progress = newProgressFactory(os.Stderr)
	}

	rec := startRecording(cfg)
	report, runErr := pipeline.Run(ctx, req, deps)
	rec.finish(report, req, runErr)

	printSummary(cmd.Root().ErrWriter, report, req.DryRun, runErr)
	return runErr
}

// loadConfig loads the config file the same way for every subcommand.
func loadConfig(cmd *cli.Command) (*config.Config, string) {
	cfgPath := config.ResolvePath(cmd.Root().String("config"))
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Initialize logger with default level for this warning
		logger.Init("info")
		logger.Warn("Could not load config", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	return cfg, cfgPath
}

// requireTools resolves and checks only the tools this run will call.
func requireTools(cfg *config.Config, needVideo, needNormalize bool) (*tools.Set, error) {
	toolset := tools.Resolve(cfg)
	needed := []tools.Name{tools.Img2WebP, tools.WebPInfo}
	if needVideo {
		needed = append(needed, tools.FFmpeg)
	}
	if needNormalize {
		needed = append(needed, tools.CWebP)
	}
	if err := toolset.Require(needed...); err != nil {
		return nil, err
	}
	for _, name := range needed {
		logger.Debug("Using tool", "tool", name, "path", toolset.Path(name))
	}
	return toolset, nil
}

// exitCode maps a run error to the process exit status. A failing
// img2webp passes its own status through.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, frames.ErrUsage) || errors.Is(err, frames.ErrParse) {
		return exitUsage
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var te *tools.ToolError
	if errors.As(err, &te) {
		return te.ExitStatus()
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitFailure
}
