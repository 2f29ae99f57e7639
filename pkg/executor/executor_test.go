package executor

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecute(t *testing.T) {
	requireShell(t)
	out, err := New().Execute(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	requireShell(t)

	_, err := New().Execute(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("Execute() should fail on non-zero exit")
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error should wrap *exec.ExitError, got %T", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", exitErr.ExitCode())
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry stderr, got %q", err.Error())
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	_, err := New().Execute(context.Background(), "definitely-not-a-real-binary-xyz")
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Execute() error = %v, want exec.ErrNotFound", err)
	}
}

func TestExecuteInDir(t *testing.T) {
	requireShell(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	out, err := New().ExecuteInDir(context.Background(), dir, "sh", "-c", "pwd -P")
	if err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("ExecuteInDir() pwd = %q, want %q", strings.TrimSpace(out), dir)
	}
}

func TestExecuteDeadline(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := New().Execute(ctx, "sh", "-c", "sleep 5"); err == nil {
		t.Fatal("Execute() should fail when the deadline passes")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
