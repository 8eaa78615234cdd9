// Package nvrtc implements the gpujit backend contract on top of the
// NVRTC runtime compilation library. The library is loaded dynamically at
// first use, so importing this package does not require NVRTC to be
// installed; Create reports a load failure instead.
package nvrtc

import (
	"sync"

	"github.com/gpujit/gpujit/backend"
)

// NVRTC is the NVRTC-backed implementation of backend.Backend.
type NVRTC struct{}

// The dlopen'd entry points are process-wide state, so the load guard is
// package-level: however many NVRTC instances exist, the library is loaded
// and its function pointers registered exactly once.
var (
	loadOnce sync.Once
	loadErr  error
)

var _ backend.Backend = (*NVRTC)(nil)

// New returns the NVRTC backend. The native library is not loaded until
// the first Create call.
func New() *NVRTC {
	return &NVRTC{}
}

// Name implements backend.Backend.
func (n *NVRTC) Name() string {
	return "nvrtc"
}

// Create allocates an NVRTC program from source text. No headers or
// include names are supplied.
func (n *NVRTC) Create(source string) (backend.Handle, error) {
	if err := n.ensureLoaded(); err != nil {
		return backend.NoHandle, err
	}
	return n.createProgram(source)
}

// Destroy implements backend.Backend.
func (n *NVRTC) Destroy(h backend.Handle) error {
	if err := n.ensureLoaded(); err != nil {
		return err
	}
	return n.destroyProgram(h)
}

// AddNameExpression implements backend.Backend.
func (n *NVRTC) AddNameExpression(h backend.Handle, expr string) error {
	if err := n.ensureLoaded(); err != nil {
		return err
	}
	return n.addNameExpression(h, expr)
}

// Compile implements backend.Backend.
func (n *NVRTC) Compile(h backend.Handle, args []string) error {
	if err := n.ensureLoaded(); err != nil {
		return err
	}
	return n.compileProgram(h, args)
}

// OutputSize implements backend.Backend.
func (n *NVRTC) OutputSize(h backend.Handle, format backend.TargetFormat) (int, error) {
	if err := n.ensureLoaded(); err != nil {
		return 0, err
	}
	return n.outputSize(h, format)
}

// Output implements backend.Backend.
func (n *NVRTC) Output(h backend.Handle, format backend.TargetFormat, buf []byte) error {
	if err := n.ensureLoaded(); err != nil {
		return err
	}
	return n.output(h, format, buf)
}

// LoweredName implements backend.Backend.
func (n *NVRTC) LoweredName(h backend.Handle, expr string) (string, error) {
	if err := n.ensureLoaded(); err != nil {
		return "", err
	}
	return n.loweredName(h, expr)
}

// LogSize implements backend.Backend.
func (n *NVRTC) LogSize(h backend.Handle) (int, error) {
	if err := n.ensureLoaded(); err != nil {
		return 0, err
	}
	return n.logSize(h)
}

// Log implements backend.Backend.
func (n *NVRTC) Log(h backend.Handle, buf []byte) error {
	if err := n.ensureLoaded(); err != nil {
		return err
	}
	return n.log(h, buf)
}

// Version returns the NVRTC major and minor version.
func (n *NVRTC) Version() (major, minor int, err error) {
	if err := n.ensureLoaded(); err != nil {
		return 0, 0, err
	}
	return n.version()
}

func (n *NVRTC) ensureLoaded() error {
	loadOnce.Do(func() {
		loadErr = load()
	})
	return loadErr
}
