// Package errz defines the error taxonomy of the gpujit wrapper. Every
// failure surfaces to the immediate caller as an *Error with a Kind; there
// is no internal retry, fallback, or partial-result recovery. Callers
// distinguish misuse (bad arguments) from backend compilation failure by
// matching the Kind with errors.Is.
package errz

import "fmt"

// Kind categorizes a wrapper error. Kind implements error so that a bare
// kind can be used as an errors.Is target:
//
//	if errors.Is(err, errz.UnsupportedTargetFormat) { ... }
type Kind int

const (
	// UnsupportedLanguage means the source language is outside the
	// supported set (currently only "c++").
	UnsupportedLanguage Kind = iota
	// InvalidSourceType means the source text is not of a textual type.
	InvalidSourceType
	// UnsupportedTargetFormat means the requested target format is outside
	// the supported set (ptx, cubin, ltoir).
	UnsupportedTargetFormat
	// MalformedMacroDefinition means a macro definition was given with
	// other than one or two components.
	MalformedMacroDefinition
	// SessionClosed means a compile was attempted after Close.
	SessionClosed
	// Backend wraps a non-success status from the backend; the cause is a
	// *backend.Error carrying the native code and message.
	Backend
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case UnsupportedLanguage:
		return "unsupported language"
	case InvalidSourceType:
		return "invalid source type"
	case UnsupportedTargetFormat:
		return "unsupported target format"
	case MalformedMacroDefinition:
		return "malformed macro definition"
	case SessionClosed:
		return "session closed"
	case Backend:
		return "backend error"
	default:
		return "error"
	}
}

// Error implements the error interface, making Kind usable as an errors.Is
// sentinel.
func (k Kind) Error() string {
	return k.String()
}

// Error is a structured wrapper error: a kind, a message, and optionally
// the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches bare Kind sentinels in addition to normal error identity.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// New returns an *Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error that carries cause for unwrapping. The message
// defaults to the cause's message.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}
