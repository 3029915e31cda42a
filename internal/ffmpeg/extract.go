package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gwlsn/webpanim/internal/logger"
	"github.com/gwlsn/webpanim/internal/tools"
)

// FramePattern names extracted frames: zero-padded eight-digit index, PNG.
const FramePattern = "%08d.png"

// streamFPS matches a stream line such as
//
//	Stream #0:0: Video: h264 ..., 1280x720, 2500 kb/s, 29.97 fps, 29.97 tbr
//
// capturing the number right before "fps,".
var streamFPS = regexp.MustCompile(`Stream.*[^0-9.]([0-9]+(?:\.[0-9]+)?)\s*fps,`)

// ExtractResult describes a finished frame extraction.
type ExtractResult struct {
	Dir    string
	FPS    int    // 0 when the frame rate could not be read
	Output string // Combined ffmpeg output
}

// Extractor splits videos into still frames with ffmpeg.
type Extractor struct {
	ffmpegPath string
	runner     tools.Runner
}

// NewExtractor creates a new Extractor with the given ffmpeg path
func NewExtractor(ffmpegPath string, runner tools.Runner) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, runner: runner}
}

// Extract writes every frame of videoPath into dir as sequentially numbered
// PNGs and reads the source frame rate from ffmpeg's stream banner.
// dir is created if missing. A non-zero ffmpeg exit is returned together
// with a populated result so callers can decide whether to continue with
// whatever frames were written.
func (e *Extractor) Extract(ctx context.Context, videoPath, dir string) (*ExtractResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	args := []string{"-i", videoPath, filepath.Join(dir, FramePattern)}
	logger.Debug("Calling ffmpeg", "args", args)

	output, err := e.runner.CombinedOutput(ctx, e.ffmpegPath, args...)

	result := &ExtractResult{
		Dir:    dir,
		FPS:    ParseFPS(string(output)),
		Output: string(output),
	}
	// ffmpeg prints a progress line per frame; only keep it around when asked
	if logger.IsDebug() {
		logger.Debug("FFmpeg output", "output", result.Output)
	}
	if result.FPS > 0 {
		logger.Debug("Video FPS", "fps", result.FPS)
	}

	return result, err
}

// ParseFPS returns the first stream frame rate found in ffmpeg output,
// rounded to the nearest integer. Missing or zero rates return 0.
func ParseFPS(output string) int {
	m := streamFPS.FindStringSubmatch(output)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int(math.Round(f))
}
