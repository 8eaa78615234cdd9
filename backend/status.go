package backend

import "fmt"

// Status is a backend result code. The values mirror the NVRTC nvrtcResult
// enumeration; a second backend would map its own codes onto this type.
type Status int32

const (
	Success                           Status = 0
	OutOfMemory                       Status = 1
	ProgramCreationFailure            Status = 2
	InvalidInput                      Status = 3
	InvalidProgram                    Status = 4
	InvalidOption                     Status = 5
	CompilationFailure                Status = 6
	BuiltinOperationFailure           Status = 7
	NoNameExpressionsAfterCompilation Status = 8
	NoLoweredNamesBeforeCompilation   Status = 9
	NameExpressionNotValid            Status = 10
	InternalError                     Status = 11
	TimeFileWriteFailed               Status = 12
)

var statusDescriptions = map[Status]string{
	Success:                           "success",
	OutOfMemory:                       "out of memory",
	ProgramCreationFailure:            "program creation failure",
	InvalidInput:                      "invalid input",
	InvalidProgram:                    "invalid program",
	InvalidOption:                     "invalid option",
	CompilationFailure:                "compilation failure",
	BuiltinOperationFailure:           "builtin operation failure",
	NoNameExpressionsAfterCompilation: "no name expressions after compilation",
	NoLoweredNamesBeforeCompilation:   "no lowered names before compilation",
	NameExpressionNotValid:            "name expression not valid",
	InternalError:                     "internal error",
	TimeFileWriteFailed:               "time file write failed",
}

// String returns a short description of the status.
func (s Status) String() string {
	if desc, ok := statusDescriptions[s]; ok {
		return desc
	}
	return fmt.Sprintf("unknown status (%d)", int32(s))
}

// Error is a non-success result from a backend call. It carries the
// backend's native status code, its message where one is available, and the
// handle the call was made against (NoHandle for session creation).
type Error struct {
	Status  Status
	Message string
	Handle  Handle
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" && e.Message != e.Status.String() {
		return fmt.Sprintf("%s (%s)", e.Message, e.Status)
	}
	return e.Status.String()
}

// NewError returns a backend Error for a non-success status.
func NewError(status Status, message string, h Handle) *Error {
	return &Error{Status: status, Message: message, Handle: h}
}
