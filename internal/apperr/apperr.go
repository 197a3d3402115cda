// Package apperr classifies errors into the kinds the HTTP boundary maps to
// status codes, so callers can tell retryable from non-retryable outcomes.
package apperr

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// Unknown is the zero kind for unclassified errors.
	Unknown Kind = iota
	// InvalidPayload marks client-caused validation failures.
	InvalidPayload
	// NotFound marks operations on absent documents.
	NotFound
	// PublishFailure marks downstream publish errors.
	PublishFailure
	// TransactionFailure marks commit or contention errors. Callers must
	// treat the outcome as indeterminate and may retry.
	TransactionFailure
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case InvalidPayload:
		return "invalid_payload"
	case NotFound:
		return "not_found"
	case PublishFailure:
		return "publish_failure"
	case TransactionFailure:
		return "transaction_failure"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k == PublishFailure || k == TransactionFailure
}

// Error tags an underlying error with a Kind.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// Kind returns the kind the error was tagged with.
func (e *Error) Kind() Kind { return e.kind }

// New creates a tagged error from a message.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, err: errors.New(msg)}
}

// Newf creates a tagged error from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap tags err with kind and annotates it with msg. Returns nil if err is
// nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: errors.Wrap(err, msg)}
}

// KindOf extracts the kind from anywhere in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return Unknown
}
