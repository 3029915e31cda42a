package tools

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gwlsn/webpanim/internal/config"
)

func stubLookPath(t *testing.T, present map[string]string) {
	t.Helper()
	orig := lookPath
	lookPath = func(file string) (string, error) {
		if p, ok := present[file]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestResolveDefaultsToPATHNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exe suffix differs on windows")
	}
	s := Resolve(config.DefaultConfig())

	for _, name := range []Name{FFmpeg, Img2WebP, WebPInfo, CWebP} {
		if got := s.Path(name); got != string(name) {
			t.Errorf("Path(%s) = %q, expected bare name", name, got)
		}
	}
}

func TestResolveUsesLibWebPDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exe suffix differs on windows")
	}
	cfg := config.DefaultConfig()
	cfg.LibWebPDir = "/opt/libwebp/bin"
	cfg.CWebPPath = "/custom/cwebp"

	s := Resolve(cfg)

	if got, want := s.Path(Img2WebP), filepath.Join("/opt/libwebp/bin", "img2webp"); got != want {
		t.Errorf("img2webp = %q, expected %q", got, want)
	}
	if got, want := s.Path(WebPInfo), filepath.Join("/opt/libwebp/bin", "webpinfo"); got != want {
		t.Errorf("webpinfo = %q, expected %q", got, want)
	}
	if got := s.Path(CWebP); got != "/custom/cwebp" {
		t.Errorf("explicit cwebp path should win, got %q", got)
	}
	if got := s.Path(FFmpeg); got != "ffmpeg" {
		t.Errorf("ffmpeg should not be affected by libwebp dir, got %q", got)
	}
}

func TestRequireResolvesPaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exe suffix differs on windows")
	}
	stubLookPath(t, map[string]string{
		"img2webp": "/usr/bin/img2webp",
		"webpinfo": "/usr/bin/webpinfo",
	})

	s := Resolve(config.DefaultConfig())
	if err := s.Require(Img2WebP, WebPInfo); err != nil {
		t.Fatalf("Require failed: %v", err)
	}
	if got := s.Path(Img2WebP); got != "/usr/bin/img2webp" {
		t.Errorf("expected resolved path, got %q", got)
	}
}

func TestRequireReportsMissingTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exe suffix differs on windows")
	}
	stubLookPath(t, map[string]string{"img2webp": "/usr/bin/img2webp"})

	s := Resolve(config.DefaultConfig())
	err := s.Require(Img2WebP, CWebP)
	if err == nil {
		t.Fatal("expected error for missing cwebp")
	}
	if !errors.Is(err, ErrMissingTool) {
		t.Errorf("expected ErrMissingTool, got %v", err)
	}
	var mt *MissingToolError
	if !errors.As(err, &mt) || mt.Tool != CWebP {
		t.Errorf("expected MissingToolError for cwebp, got %v", err)
	}
}
