package usecase

import "errors"

// Kind classifies engine failures for the transport boundary.
type Kind int

const (
	// KindInternal covers storage errors, generation failures and missing
	// data that a successful write should have guaranteed. The message is
	// generic; detail is logged once and never reaches the caller.
	KindInternal Kind = iota

	// KindNotFound means the referenced product does not exist under the
	// caller's owner scope.
	KindNotFound

	// KindFailedPrecondition means the request is well-formed but violates a
	// business rule: oversell, duplicate order line, malformed id, or a
	// quantity decrease attempted outside order processing.
	KindFailedPrecondition
)

// Error is the failure type every engine operation returns. It carries a
// semantic kind only; mapping kinds to status codes is the handler's job.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func newInternal(message string) error {
	return NewError(KindInternal, message)
}

func newNotFound(message string) error {
	return NewError(KindNotFound, message)
}

func newFailedPrecondition(message string) error {
	return NewError(KindFailedPrecondition, message)
}
