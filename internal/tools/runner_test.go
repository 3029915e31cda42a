package tools

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	out, err := ExecRunner{}.CombinedOutput(context.Background(), sh, "-c", "echo out; echo err 1>&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "out") || !strings.Contains(string(out), "err") {
		t.Errorf("expected stdout and stderr in output, got %q", out)
	}
}

func TestExecRunnerExitStatus(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	out, err := ExecRunner{}.CombinedOutput(context.Background(), sh, "-c", "echo broken frame; exit 3")
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if te.ExitCode != 3 || te.ExitStatus() != 3 {
		t.Errorf("expected exit code 3, got %d", te.ExitCode)
	}
	if !strings.Contains(string(out), "broken frame") {
		t.Errorf("output should be returned on failure, got %q", out)
	}
	if !strings.Contains(te.Error(), "broken frame") {
		t.Errorf("error should include last output line, got %q", te.Error())
	}
}

func TestExecRunnerLaunchFailure(t *testing.T) {
	_, err := ExecRunner{}.CombinedOutput(context.Background(), "/nonexistent/img2webp")
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if te.ExitCode != -1 {
		t.Errorf("expected -1 exit code for launch failure, got %d", te.ExitCode)
	}
	if te.ExitStatus() != 1 {
		t.Errorf("launch failure should map to status 1, got %d", te.ExitStatus())
	}
	if te.Tool != "img2webp" {
		t.Errorf("expected tool name img2webp, got %q", te.Tool)
	}
}

func TestExecRunnerCancelled(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ExecRunner{}.CombinedOutput(ctx, sh, "-c", "sleep 5")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var te *ToolError
	if !errors.As(err, &te) || te.Tool != "sh" {
		t.Errorf("expected ToolError for sh, got %v", err)
	}
}
