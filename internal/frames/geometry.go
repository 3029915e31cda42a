package frames

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a resize target. cwebp treats a zero dimension as "keep aspect".
type Size struct {
	Width  int
	Height int
}

// Rect is a crop rectangle in source pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Geometry describes the optional per-frame normalization.
type Geometry struct {
	Resize *Size
	Crop   *Rect
}

// Active reports whether any normalization was requested.
func (g Geometry) Active() bool {
	return g.Resize != nil || g.Crop != nil
}

// DirName returns the temp directory name for normalized copies.
// The name is derived from both settings, so distinct geometries never share
// a directory.
func (g Geometry) DirName() string {
	var parts []string
	if g.Resize != nil {
		parts = append(parts, fmt.Sprintf("resize_%dx%d", g.Resize.Width, g.Resize.Height))
	}
	if g.Crop != nil {
		parts = append(parts, fmt.Sprintf("crop_%d_%d_%d_%d", g.Crop.X, g.Crop.Y, g.Crop.Width, g.Crop.Height))
	}
	return "tmp_" + strings.Join(parts, "_")
}

// ParseGeometry parses the resize ("WxH") and crop ("X,Y,W,H") values.
// Empty strings leave the corresponding part unset.
func ParseGeometry(resize, crop string) (Geometry, error) {
	var g Geometry
	if resize != "" {
		s, err := ParseResize(resize)
		if err != nil {
			return Geometry{}, err
		}
		g.Resize = &s
	}
	if crop != "" {
		r, err := ParseCrop(crop)
		if err != nil {
			return Geometry{}, err
		}
		g.Crop = &r
	}
	return g, nil
}

// ParseResize parses "WxH", e.g. "320x240".
func ParseResize(value string) (Size, error) {
	vals, err := parseInts("resize", value, strings.Split(strings.ToLower(value), "x"), 2)
	if err != nil {
		return Size{}, err
	}
	return Size{Width: vals[0], Height: vals[1]}, nil
}

// ParseCrop parses "X,Y,W,H", e.g. "0,0,640,360".
func ParseCrop(value string) (Rect, error) {
	vals, err := parseInts("crop", value, strings.Split(value, ","), 4)
	if err != nil {
		return Rect{}, err
	}
	r := Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width == 0 || r.Height == 0 {
		return Rect{}, parseError("crop", value, "width and height must be positive")
	}
	return r, nil
}

func parseInts(kind, value string, parts []string, want int) ([]int, error) {
	if len(parts) != want {
		return nil, parseError(kind, value, fmt.Sprintf("expected %d values, got %d", want, len(parts)))
	}
	vals := make([]int, want)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, parseError(kind, value, fmt.Sprintf("%q is not an integer", p))
		}
		if v < 0 {
			return nil, parseError(kind, value, fmt.Sprintf("%d is negative", v))
		}
		vals[i] = v
	}
	return vals, nil
}
