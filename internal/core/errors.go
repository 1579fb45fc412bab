package core

import "github.com/coregx/quill/internal/security"

// ErrInjection is matched by every rejection of caller input: malformed
// identifiers, empty field lists and payloads, negative limits, malformed
// operands and unserializable values.
var ErrInjection = security.ErrInjection

// InjectionError carries the offending value and the reason it was rejected.
type InjectionError = security.InjectionError

// reject builds an injection-class error for value.
func reject(value, reason string) error {
	return security.NewInjectionError(value, reason)
}

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
