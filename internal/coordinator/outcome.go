package coordinator

import (
	"errors"

	"github.com/cognifloe/control-plane/internal/remote"
)

// Source names the path that produced a result.
type Source string

const (
	SourceRemote Source = remote.SourceRemote
	SourceLocal  Source = "local"
)

// Outcome is a result together with its provenance. It is either Remote,
// holding the service's answer, or Local, holding the fallback answer and
// the reason the remote path was not used.
type Outcome[T any] struct {
	value  T
	source Source
	cause  error
}

// Remote wraps a result produced by the remote service.
func Remote[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, source: SourceRemote}
}

// Local wraps a fallback result. cause is why the remote path was skipped
// or failed.
func Local[T any](v T, cause error) Outcome[T] {
	return Outcome[T]{value: v, source: SourceLocal, cause: cause}
}

// Value returns the result.
func (o Outcome[T]) Value() T { return o.value }

// Source returns the provenance.
func (o Outcome[T]) Source() Source { return o.source }

// IsRemote reports whether the remote service produced the result.
func (o Outcome[T]) IsRemote() bool { return o.source == SourceRemote }

// Err returns the fallback cause, nil for remote outcomes.
func (o Outcome[T]) Err() error { return o.cause }

// Advisory is the user-facing note attached to a local outcome. Remote
// outcomes have none.
func (o Outcome[T]) Advisory() string {
	if o.IsRemote() {
		return ""
	}
	if o.cause == nil || errors.Is(o.cause, remote.ErrNotConfigured) {
		return "Showing the local estimate; no remote analysis service is configured."
	}
	return "The remote analysis service is unavailable; showing the local estimate instead."
}
