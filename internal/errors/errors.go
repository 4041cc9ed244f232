package errors

import "errors"

// Kind classifies a failure for logging and response policy. Every kind still
// renders as a re-rendered form with a message; kinds only differentiate what
// gets logged.
type Kind int

const (
	// KindValidation marks schema-validation failures caught before a handler runs.
	KindValidation Kind = iota
	// KindNotFound marks lookups that found no record.
	KindNotFound
	// KindUnauthorized marks credential or session failures.
	KindUnauthorized
	// KindConflict marks business-rule violations such as a duplicate email.
	KindConflict
	// KindInfrastructure marks store or dependency failures.
	KindInfrastructure
)

// String returns the log label for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Error is a tagged error whose Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// E builds a tagged error with a user-facing message.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error with a kind and a user-facing message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies any error. Untagged errors count as infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}
