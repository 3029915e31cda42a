package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"

	webpanim "github.com/gwlsn/webpanim"
	"github.com/gwlsn/webpanim/internal/frames"
	"github.com/gwlsn/webpanim/internal/store"
	"github.com/gwlsn/webpanim/internal/tools"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", fmt.Errorf("%w: bad", frames.ErrUsage), exitUsage},
		{"parse", fmt.Errorf("%w: bad", frames.ErrParse), exitUsage},
		{"cancelled", fmt.Errorf("run: %w", context.Canceled), exitInterrupted},
		{"tool", &tools.ToolError{Tool: "img2webp", ExitCode: 3}, 3},
		{"tool did not start", &tools.ToolError{Tool: "img2webp", ExitCode: -1}, 1},
		{"missing tool", &tools.MissingToolError{Tool: tools.Img2WebP, Path: "x", Err: errors.New("nope")}, exitFailure},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// fakeTool writes an executable that exits 0 without doing anything.
func fakeTool(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "webpanim.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newCommand()
	var stdout, stderr bytes.Buffer
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr
	err := cmd.Run(context.Background(), append([]string{"webpanim"}, args...))
	return stdout.String(), err
}

func TestRunRejectsBadInput(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeConfig(t, tmp, "")

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"--config", cfg}},
		{"one argument", []string{"--config", cfg, tmp}},
		{"three arguments", []string{"--config", cfg, tmp, "out.webp", "extra"}},
		{"bad resize", []string{"--config", cfg, "--resize", "100", tmp, "out.webp"}},
		{"bad crop", []string{"--config", cfg, "--crop", "1,2,3", tmp, "out.webp"}},
		{"quality too high", []string{"--config", cfg, "-q", "200", tmp, "out.webp"}},
		{"method too high", []string{"--config", cfg, "-m", "9", tmp, "out.webp"}},
		{"non-numeric flag", []string{"--config", cfg, "--loop", "forever", tmp, "out.webp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if got := exitCode(err); got != exitUsage {
				t.Errorf("exit code = %d (err %v), want %d", got, err, exitUsage)
			}
		})
	}
}

func TestRunMissingTool(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeConfig(t, tmp, fmt.Sprintf("img2webp_path: %q\n", filepath.Join(tmp, "no-such-img2webp")))

	_, err := run(t, "--config", cfg, tmp, "out.webp")
	if !errors.Is(err, tools.ErrMissingTool) {
		t.Fatalf("err = %v, want ErrMissingTool", err)
	}
	if got := exitCode(err); got != exitFailure {
		t.Errorf("exit code = %d, want %d", got, exitFailure)
	}
}

func TestRunDryRunRecordsHistory(t *testing.T) {
	tmp := t.TempDir()
	bin := t.TempDir()
	img2webp := fakeTool(t, bin, "img2webp")
	webpinfo := fakeTool(t, bin, "webpinfo")
	db := filepath.Join(tmp, "history.db")
	cfg := writeConfig(t, tmp, fmt.Sprintf(
		"img2webp_path: %q\nwebpinfo_path: %q\nhistory_path: %q\n", img2webp, webpinfo, db))

	frameDir := filepath.Join(tmp, "frames")
	if err := os.Mkdir(frameDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.png", "a.png", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(frameDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "--config", cfg, "--dry-run", frameDir, "#dir/anim")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "found 3 files") {
		t.Errorf("output missing file count:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join(frameDir, "anim.webp")) {
		t.Errorf("output missing resolved outfile:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(frameDir, "anim.webp")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote an output file: %v", err)
	}

	out, err = run(t, "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "dry_run") || !strings.Contains(out, frameDir) {
		t.Errorf("history output missing run:\n%s", out)
	}

	hist, err := store.NewSQLiteStore(db)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := hist.RecentRuns(1)
	hist.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns = %v, %v", runs, err)
	}

	out, err = run(t, "--config", cfg, "history", "--id", runs[0].ID)
	if err != nil {
		t.Fatalf("history --id: %v", err)
	}
	if !strings.Contains(out, "status:    dry_run") || !strings.Contains(out, "frames:    3 of 3 collected") {
		t.Errorf("history --id output missing details:\n%s", out)
	}

	_, err = run(t, "--config", cfg, "history", "--id", "no-such-run")
	if got := exitCode(err); got != exitUsage {
		t.Errorf("unknown run id: exit code = %d (err %v), want %d", got, err, exitUsage)
	}
}

func TestHistoryDisabled(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "history_path: \"\"\n")
	if _, err := run(t, "--config", cfg, "history"); err == nil {
		t.Error("expected an error when history is disabled")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "webpanim.yaml")

	if _, err := run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "workers: 1") {
		t.Errorf("config file missing defaults:\n%s", data)
	}

	if _, err := run(t, "--config", path, "config", "init"); err == nil {
		t.Error("expected an error overwriting without --force")
	}
	if _, err := run(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

// dryRunFixture writes a config pointing at no-op tools and a directory
// holding a.png, b.png and c.png.
func dryRunFixture(t *testing.T) (cfg, frameDir string) {
	t.Helper()
	tmp := t.TempDir()
	bin := t.TempDir()
	cfg = writeConfig(t, tmp, fmt.Sprintf("img2webp_path: %q\nwebpinfo_path: %q\ncwebp_path: %q\n",
		fakeTool(t, bin, "img2webp"), fakeTool(t, bin, "webpinfo"), fakeTool(t, bin, "cwebp")))

	frameDir = filepath.Join(tmp, "frames")
	if err := os.Mkdir(frameDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.png", "c.png", "a.png"} {
		if err := os.WriteFile(filepath.Join(frameDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg, frameDir
}

// commandLine returns the first printed line starting with tool.
func commandLine(out, tool string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, tool+" ") {
			return line
		}
	}
	return ""
}

func TestRunDryRunFlags(t *testing.T) {
	cfg, frameDir := dryRunFixture(t)
	a := filepath.Join(frameDir, "a.png")
	b := filepath.Join(frameDir, "b.png")
	c := filepath.Join(frameDir, "c.png")

	tests := []struct {
		name   string
		flags  []string
		want   []string // substrings of the img2webp line
		absent []string // must not appear in the img2webp line
		order  []string // must appear in this order in the img2webp line
		output []string // substrings of the whole output
		cwebp  string   // prefix of the planned cwebp line, if any
	}{
		{
			name:  "defaults",
			want:  []string{"img2webp -loop 0 -d 100 -q 75 -m 4 ", "-o " + filepath.Join(frameDir, "anim.webp")},
			order: []string{a, b, c},
		},
		{
			name:   "short verbose",
			flags:  []string{"-v"},
			output: []string{" -> " + a, " -> " + c, "found 3 files"},
			want:   []string{"img2webp -loop 0"},
		},
		{
			name:   "long verbose",
			flags:  []string{"--verbose"},
			output: []string{" -> " + b},
			want:   []string{"img2webp -loop 0"},
		},
		{
			name:  "lossy and lossless",
			flags: []string{"--lossy", "--lossless"},
			want:  []string{"-d 100 -lossy -lossless -q 75 -m 4 " + a},
		},
		{
			name:  "quality method delay loop",
			flags: []string{"-q", "87.5", "-m", "6", "-d", "40", "--loop", "3"},
			want:  []string{"img2webp -loop 3 -d 40 -q 87.5 -m 6 " + a},
		},
		{
			name:  "sortrev",
			flags: []string{"--sortrev"},
			order: []string{c, b, a},
		},
		{
			name:   "skip",
			flags:  []string{"--skip", "2"},
			order:  []string{a, c},
			absent: []string{b},
		},
		{
			name:  "resize",
			flags: []string{"--resize", "32x16", "-j", "4"},
			cwebp: "cwebp -lossless -resize 32 16 ",
			want:  []string{filepath.Join(frameDir, "tmp_resize_32x16", "a.webp")},
		},
		{
			name:  "crop",
			flags: []string{"--crop", "1,2,3,4"},
			cwebp: "cwebp -lossless -crop 1 2 3 4 ",
			want:  []string{filepath.Join(frameDir, "tmp_crop_1_2_3_4", "b.webp")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "--dry-run"}, tt.flags...)
			out, err := run(t, append(args, frameDir, "#dir/anim")...)
			if err != nil {
				t.Fatalf("run: %v\n%s", err, out)
			}

			line := commandLine(out, "img2webp")
			if line == "" {
				t.Fatalf("no img2webp command printed:\n%s", out)
			}
			for _, s := range tt.want {
				if !strings.Contains(line, s) {
					t.Errorf("img2webp line missing %q:\n%s", s, line)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(line, s) {
					t.Errorf("img2webp line should not contain %q:\n%s", s, line)
				}
			}
			last := -1
			for _, s := range tt.order {
				i := strings.Index(line, s)
				if i <= last {
					t.Errorf("%q out of order in:\n%s", s, line)
				}
				last = i
			}
			for _, s := range tt.output {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			if tt.cwebp != "" && !strings.HasPrefix(commandLine(out, "cwebp"), tt.cwebp) {
				t.Errorf("planned cwebp line should start with %q:\n%s", tt.cwebp, out)
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, webpanim.Version) {
		t.Errorf("--version output = %q, expected version %s", out, webpanim.Version)
	}
}
