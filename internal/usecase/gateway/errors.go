package gateway

import (
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/talk-assistant/pkg/ai"
)

// ErrClientNotConfigured is returned when a call needs a client that was not wired
var ErrClientNotConfigured = errors.New("client not configured")

// Kind classifies why a model call failed
type Kind int

const (
	// KindTransport covers non-success statuses, network errors and deadlines
	KindTransport Kind = iota + 1
	// KindParse covers success bodies that could not be decoded
	KindParse
	// KindValidation covers decoded outputs that violate their constraints
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// CallError is returned once every attempt of a call failed.
// Kind reflects the last attempt.
type CallError struct {
	Op       string
	Kind     Kind
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts (%s): %v", e.Op, e.Attempts, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// attemptError tags a single attempt failure with its kind
type attemptError struct {
	kind Kind
	err  error
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

// notConfigured is permanent: retrying a missing client cannot succeed
func notConfigured(name string) error {
	return backoff.Permanent(fmt.Errorf("%s: %w", name, ErrClientNotConfigured))
}

// ParseFailure marks err as a malformed structured output
func ParseFailure(err error) error {
	return &attemptError{kind: KindParse, err: err}
}

// ValidationFailure marks err as an out-of-range structured output
func ValidationFailure(err error) error {
	return &attemptError{kind: KindValidation, err: err}
}

func classify(err error) Kind {
	var ae *attemptError
	if errors.As(err, &ae) {
		return ae.kind
	}
	if errors.Is(err, ai.ErrMalformedResponse) {
		return KindParse
	}
	return KindTransport
}

// KindOf returns the kind of a failed call, or 0 when err is not a CallError
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsTransport reports whether err is an exhausted call that failed in transport
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// IsOutputFailure reports whether err is an exhausted call whose last attempt
// produced an unusable structured output (parse or validation)
func IsOutputFailure(err error) bool {
	k := KindOf(err)
	return k == KindParse || k == KindValidation
}
