// Package apperr defines the fatal and non-fatal error kinds the Generate
// pipeline can surface, and the exit-code mapping the CLI applies to them.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds a generate run can fail with.
type Kind string

const (
	ConfigInvalid          Kind = "config_invalid"
	LibraryEmpty           Kind = "library_empty"
	SeedNotFound           Kind = "seed_not_found"
	SeedTooShort           Kind = "seed_too_short"
	InsufficientCandidates Kind = "insufficient_candidates"
	StoreUnavailable       Kind = "store_unavailable"
	ArtifactWriteFailed    Kind = "artifact_write_failed"
	UsageRecordFailed      Kind = "usage_record_failed"
)

// Fatal reports whether an error of this kind must abort the run.
// UsageRecordFailed is the sole non-fatal kind: usage bookkeeping failing
// after both artifacts are durable is a warning, not a failed generate.
func (k Kind) Fatal() bool {
	return k != UsageRecordFailed
}

// Error wraps an underlying cause with a Kind so the CLI can map it to an
// exit code and the caller can branch on what went wrong.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ExitCode maps an error returned from a generate run to the process exit
// code contract: 0 success, 1 fatal, 2 usage error, 130 interrupt.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ae, ok := As(err); ok {
		if !ae.Kind.Fatal() {
			return 0
		}
		return 1
	}
	return 1
}
