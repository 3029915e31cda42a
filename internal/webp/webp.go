// Package webp wraps the libwebp command line tools: webpinfo for
// introspection, cwebp for single-image conversion and img2webp for
// assembling animations.
package webp

import (
	"context"
	"strconv"
	"strings"

	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/logger"
	"github.com/gwlsn/webpanim/internal/tools"
)

// AnimationMarker is printed by webpinfo for every animation frame chunk.
const AnimationMarker = " ANMF "

// Inspector wraps webpinfo.
type Inspector struct {
	path   string
	runner tools.Runner
}

// NewInspector creates a new Inspector with the given webpinfo path
func NewInspector(webpinfoPath string, runner tools.Runner) *Inspector {
	return &Inspector{path: webpinfoPath, runner: runner}
}

// IsAnimated reports whether webpinfo lists an animation frame chunk in
// file. On failure the output captured so far is still checked, and the
// tool error is returned alongside the verdict.
func (i *Inspector) IsAnimated(ctx context.Context, file string) (bool, error) {
	output, err := i.runner.CombinedOutput(ctx, i.path, file)
	return strings.Contains(string(output), AnimationMarker), err
}

// Converter wraps cwebp.
type Converter struct {
	path   string
	runner tools.Runner
}

// NewConverter creates a new Converter with the given cwebp path
func NewConverter(cwebpPath string, runner tools.Runner) *Converter {
	return &Converter{path: cwebpPath, runner: runner}
}

// Convert writes a lossless WebP copy of in to out, resized and/or cropped
// as g describes.
func (c *Converter) Convert(ctx context.Context, in, out string, g frames.Geometry) error {
	args := ConvertArgs(in, out, g)
	logger.Debug("Calling cwebp", "args", args)
	_, err := c.runner.CombinedOutput(ctx, c.path, args...)
	return err
}

// ConvertArgs builds the cwebp argument list for one image.
func ConvertArgs(in, out string, g frames.Geometry) []string {
	args := []string{"-lossless"}
	if g.Resize != nil {
		args = append(args, "-resize", strconv.Itoa(g.Resize.Width), strconv.Itoa(g.Resize.Height))
	}
	if g.Crop != nil {
		args = append(args, "-crop",
			strconv.Itoa(g.Crop.X), strconv.Itoa(g.Crop.Y),
			strconv.Itoa(g.Crop.Width), strconv.Itoa(g.Crop.Height))
	}
	return append(args, in, "-o", out)
}

// Encoder wraps img2webp.
type Encoder struct {
	path   string
	runner tools.Runner
}

// NewEncoder creates a new Encoder with the given img2webp path
func NewEncoder(img2webpPath string, runner tools.Runner) *Encoder {
	return &Encoder{path: img2webpPath, runner: runner}
}

// Encode runs img2webp once with the full argument list built by
// frames.BuildArgs and blocks until it exits.
func (e *Encoder) Encode(ctx context.Context, args []string) error {
	output, err := e.runner.CombinedOutput(ctx, e.path, args...)
	if out := strings.TrimSpace(string(output)); out != "" {
		logger.Debug("img2webp output", "output", out)
	}
	return err
}
