// Package backend defines the contract between the gpujit wrapper and the
// native runtime compiler that performs the actual compilation. The wrapper
// never interprets source text or compiled output itself; it formats
// options, owns the session handle, and moves bytes.
//
// Exactly one real backend exists today (NVRTC, in the nvrtc subpackage).
// Adding another means implementing this interface, not adding a string
// branch.
package backend

// Handle identifies one backend compilation session. It is opaque to the
// wrapper: only the backend that issued it may interpret it. The zero value
// means "no session".
type Handle uintptr

// NoHandle is the empty handle value.
const NoHandle Handle = 0

// Language identifies the source language of a program.
type Language string

// CPP is the only supported source language.
const CPP Language = "c++"

// Supported reports whether the language can be compiled.
func (l Language) Supported() bool {
	return l == CPP
}

// TargetFormat identifies the kind of compiled output requested from a
// compilation.
type TargetFormat string

const (
	// PTX is the assembly-like intermediate representation.
	PTX TargetFormat = "ptx"
	// Cubin is the binary object format.
	Cubin TargetFormat = "cubin"
	// LTOIR is the link-time-optimization intermediate representation.
	LTOIR TargetFormat = "ltoir"
)

// Compilable reports whether a compilation can emit this format.
func (t TargetFormat) Compilable() bool {
	switch t {
	case PTX, Cubin, LTOIR:
		return true
	}
	return false
}

// Backend is the set of calls the wrapper makes against the native
// compiler. Every method that can fail returns a *Error carrying the
// backend's own status code; the wrapper propagates these without
// reinterpretation.
//
// Implementations are not required to be safe for concurrent use of the
// same handle. The Program type serializes its own calls.
type Backend interface {
	// Name identifies the backend, e.g. "nvrtc".
	Name() string

	// Create allocates a compilation session from source text.
	Create(source string) (Handle, error)

	// Destroy releases a session. The handle must not be used afterwards.
	Destroy(h Handle) error

	// AddNameExpression registers a symbol name expression before
	// compilation so its lowered form can be queried afterwards.
	AddNameExpression(h Handle, expr string) error

	// Compile runs the compilation with the given argument vector.
	Compile(h Handle, args []string) error

	// OutputSize returns the size in bytes of the compiled output for the
	// given target format. Valid only after a successful Compile.
	OutputSize(h Handle, format TargetFormat) (int, error)

	// Output fills buf with the compiled output for the given target
	// format. len(buf) must equal the value reported by OutputSize.
	Output(h Handle, format TargetFormat, buf []byte) error

	// LoweredName returns the backend-resolved (mangled) name for a
	// previously registered name expression.
	LoweredName(h Handle, expr string) (string, error)

	// LogSize returns the size in bytes of the diagnostic log, including
	// the trailing NUL. A size of 1 means the log is empty.
	LogSize(h Handle) (int, error)

	// Log fills buf with the diagnostic log text.
	Log(h Handle, buf []byte) error
}
