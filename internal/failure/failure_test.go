package failure

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"
)

func TestFromExec(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want Kind
	}{
		{"deadline", expired, errors.New("signal: killed"), Timeout},
		{"binary missing", context.Background(), fmt.Errorf("command 'ffmpeg' failed: %w", exec.ErrNotFound), DependencyUnreachable},
		{"exit status", context.Background(), fmt.Errorf("command 'ffmpeg' failed: %w", &exec.ExitError{}), NonZeroExit},
		{"unknown", context.Background(), errors.New("pipe broke"), DependencyUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromExec(tt.ctx, "ffmpeg", tt.err)
			if got.Kind != tt.want {
				t.Errorf("FromExec() kind = %v, want %v", got.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("FromExec() should wrap the original error")
			}
		})
	}

	if FromExec(context.Background(), "ffmpeg", nil) != nil {
		t.Error("FromExec(nil) should be nil")
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	f := New(InvalidResponse, "llm generate", errors.New("empty body"))
	wrapped := fmt.Errorf("clean stage: %w", f)

	if KindOf(wrapped) != InvalidResponse {
		t.Errorf("KindOf() = %v, want %v", KindOf(wrapped), InvalidResponse)
	}
	if !Is(wrapped, InvalidResponse) {
		t.Error("Is() = false, want true")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain error) should be empty")
	}
}

func TestEnsure(t *testing.T) {
	f := New(Timeout, "op", nil)
	if Ensure(f, "other", NonZeroExit) != f {
		t.Error("Ensure() should return an existing Failure unchanged")
	}
	got := Ensure(errors.New("x"), "op", NonZeroExit)
	if got.Kind != NonZeroExit || got.Op != "op" {
		t.Errorf("Ensure() = %+v", got)
	}
	if Ensure(nil, "op", NonZeroExit) != nil {
		t.Error("Ensure(nil) should be nil")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{Timeout, true},
		{DependencyUnreachable, true},
		{InvalidResponse, false},
		{NonZeroExit, false},
		{MissingDependency, false},
	}
	for _, tt := range tests {
		if got := Retryable(New(tt.kind, "op", nil)); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestErrorString(t *testing.T) {
	f := Newf(NonZeroExit, "whisper", "exit %d", 2)
	if f.Error() != "whisper: non_zero_exit: exit 2" {
		t.Errorf("Error() = %q", f.Error())
	}
}
