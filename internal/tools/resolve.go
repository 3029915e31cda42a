package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/gwlsn/webpanim/internal/config"
)

// Name identifies an external tool.
type Name string

const (
	FFmpeg   Name = "ffmpeg"
	Img2WebP Name = "img2webp"
	WebPInfo Name = "webpinfo"
	CWebP    Name = "cwebp"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ErrMissingTool is matched by every MissingToolError.
var ErrMissingTool = errors.New("tool not found")

// MissingToolError names a tool the resolver could not locate.
type MissingToolError struct {
	Tool Name
	Path string
	Err  error
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s: %s not found at %q: %v", ErrMissingTool, e.Tool, e.Path, e.Err)
}

func (e *MissingToolError) Unwrap() error { return ErrMissingTool }

// Set holds the location of each named tool.
type Set struct {
	paths map[Name]string
}

// Resolve computes candidate locations for every tool from cfg.
// An explicit per-tool path wins; libwebp tools otherwise live in
// cfg.LibWebPDir; anything left is looked up on PATH by name.
// Nothing is checked on disk until Require.
func Resolve(cfg *config.Config) *Set {
	s := &Set{paths: make(map[Name]string, 4)}

	s.paths[FFmpeg] = cfg.FFmpegPath
	if s.paths[FFmpeg] == "" {
		s.paths[FFmpeg] = exeName(FFmpeg)
	}

	explicit := map[Name]string{
		Img2WebP: cfg.Img2WebPPath,
		WebPInfo: cfg.WebPInfoPath,
		CWebP:    cfg.CWebPPath,
	}
	for name, p := range explicit {
		switch {
		case p != "":
			s.paths[name] = p
		case cfg.LibWebPDir != "":
			s.paths[name] = filepath.Join(cfg.LibWebPDir, exeName(name))
		default:
			s.paths[name] = exeName(name)
		}
	}

	return s
}

// Path returns the location of the named tool.
func (s *Set) Path(name Name) string {
	return s.paths[name]
}

// Require checks that every named tool exists and is executable,
// replacing each entry with the path exec.LookPath resolved.
// The first missing tool is returned as a *MissingToolError.
func (s *Set) Require(names ...Name) error {
	for _, name := range names {
		p := s.paths[name]
		resolved, err := lookPath(p)
		if err != nil {
			return &MissingToolError{Tool: name, Path: p, Err: err}
		}
		s.paths[name] = resolved
	}
	return nil
}

func exeName(name Name) string {
	if runtime.GOOS == "windows" {
		return string(name) + ".exe"
	}
	return string(name)
}
