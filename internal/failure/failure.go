// Package failure defines the typed errors that stages and adapters report.
package failure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// Kind classifies why a stage could not produce its artifact.
type Kind string

const (
	DependencyUnreachable Kind = "dependency_unreachable"
	Timeout               Kind = "timeout"
	InvalidResponse       Kind = "invalid_response"
	NonZeroExit           Kind = "non_zero_exit"
	MissingDependency     Kind = "missing_dependency"
	ArtifactValidation    Kind = "artifact_validation"
)

// Failure is a classified error with the operation that produced it.
type Failure struct {
	Kind Kind
	Op   string
	Err  error
}

// New creates a Failure of the given kind.
func New(kind Kind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

// Newf creates a Failure with a formatted message.
func Newf(kind Kind, op string, format string, args ...interface{}) *Failure {
	return New(kind, op, fmt.Errorf(format, args...))
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Op, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// As extracts a *Failure from err's chain.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return ""
}

// Is reports whether err is a Failure of kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}

// Ensure returns err as a *Failure, classifying unknown errors as fallback.
func Ensure(err error, op string, fallback Kind) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := As(err); ok {
		return f
	}
	return New(fallback, op, err)
}

// FromExec classifies an error returned by the executor for a local tool.
// ctx is the context the command ran under so deadline expiry maps to Timeout
// even though the killed process surfaces as an exit error.
func FromExec(ctx context.Context, op string, err error) *Failure {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return New(Timeout, op, err)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return New(DependencyUnreachable, op, err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return New(NonZeroExit, op, err)
	}
	return New(DependencyUnreachable, op, err)
}

// Retryable reports whether a failure is worth retrying against a remote service.
func Retryable(err error) bool {
	switch KindOf(err) {
	case Timeout, DependencyUnreachable:
		return true
	default:
		return false
	}
}
