// Package backendtest provides a scriptable in-memory backend for testing
// code that drives compilation sessions without a native compiler
// installed.
package backendtest

import (
	"fmt"
	"sync"

	"github.com/gpujit/gpujit/backend"
)

// Fake is an in-memory backend.Backend. It tracks live handles (so tests
// can assert that sessions are released exactly once), records every call,
// and can be scripted with canned outputs, log text, and injected
// failures.
//
// The zero value is usable.
type Fake struct {
	mu       sync.Mutex
	next     backend.Handle
	sessions map[backend.Handle]*session

	// Outputs overrides the bytes returned per target format. Formats not
	// present fall back to a synthesized placeholder.
	Outputs map[backend.TargetFormat][]byte

	// LogText is the diagnostic log reported after a compile. The backend
	// convention of a trailing NUL is applied automatically.
	LogText string

	// Lower computes the lowered name for a name expression. Defaults to
	// a mangled-looking placeholder.
	Lower func(expr string) string

	// Fail maps an operation name ("create", "destroy", "addname",
	// "compile", "outputsize", "output", "loweredname", "logsize", "log")
	// to an error returned by that operation.
	Fail map[string]error

	// Calls records operation names in invocation order.
	Calls []string
}

var _ backend.Backend = (*Fake)(nil)

type session struct {
	source   string
	names    []string
	compiled bool
}

// Name implements backend.Backend.
func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) record(op string) error {
	f.Calls = append(f.Calls, op)
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func (f *Fake) session(h backend.Handle) (*session, error) {
	s, ok := f.sessions[h]
	if !ok {
		return nil, backend.NewError(backend.InvalidProgram, "unknown handle", h)
	}
	return s, nil
}

// Create implements backend.Backend.
func (f *Fake) Create(source string) (backend.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return backend.NoHandle, err
	}
	if f.sessions == nil {
		f.sessions = map[backend.Handle]*session{}
	}
	f.next++
	f.sessions[f.next] = &session{source: source}
	return f.next, nil
}

// Destroy implements backend.Backend. Destroying an unknown or already
// destroyed handle fails, which is how tests catch double releases.
func (f *Fake) Destroy(h backend.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("destroy"); err != nil {
		return err
	}
	if _, err := f.session(h); err != nil {
		return err
	}
	delete(f.sessions, h)
	return nil
}

// AddNameExpression implements backend.Backend.
func (f *Fake) AddNameExpression(h backend.Handle, expr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("addname"); err != nil {
		return err
	}
	s, err := f.session(h)
	if err != nil {
		return err
	}
	s.names = append(s.names, expr)
	return nil
}

// Compile implements backend.Backend.
func (f *Fake) Compile(h backend.Handle, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("compile"); err != nil {
		return err
	}
	s, err := f.session(h)
	if err != nil {
		return err
	}
	s.compiled = true
	return nil
}

// OutputSize implements backend.Backend.
func (f *Fake) OutputSize(h backend.Handle, format backend.TargetFormat) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("outputsize"); err != nil {
		return 0, err
	}
	data, err := f.outputFor(h, format)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Output implements backend.Backend.
func (f *Fake) Output(h backend.Handle, format backend.TargetFormat, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("output"); err != nil {
		return err
	}
	data, err := f.outputFor(h, format)
	if err != nil {
		return err
	}
	if len(buf) != len(data) {
		return backend.NewError(backend.InvalidInput,
			fmt.Sprintf("buffer size %d does not match output size %d", len(buf), len(data)), h)
	}
	copy(buf, data)
	return nil
}

func (f *Fake) outputFor(h backend.Handle, format backend.TargetFormat) ([]byte, error) {
	s, err := f.session(h)
	if err != nil {
		return nil, err
	}
	if !s.compiled {
		return nil, backend.NewError(backend.InvalidProgram, "program not compiled", h)
	}
	if data, ok := f.Outputs[format]; ok {
		return data, nil
	}
	return []byte(fmt.Sprintf("// fake %s output\n", format)), nil
}

// LoweredName implements backend.Backend. The expression must have been
// registered before the compile, as the real backend requires.
func (f *Fake) LoweredName(h backend.Handle, expr string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("loweredname"); err != nil {
		return "", err
	}
	s, err := f.session(h)
	if err != nil {
		return "", err
	}
	if !s.compiled {
		return "", backend.NewError(backend.NoLoweredNamesBeforeCompilation, "program not compiled", h)
	}
	for _, name := range s.names {
		if name == expr {
			if f.Lower != nil {
				return f.Lower(expr), nil
			}
			return fmt.Sprintf("_Z%d%sv", len(expr), expr), nil
		}
	}
	return "", backend.NewError(backend.NameExpressionNotValid, "name expression not registered", h)
}

// LogSize implements backend.Backend.
func (f *Fake) LogSize(h backend.Handle) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("logsize"); err != nil {
		return 0, err
	}
	if _, err := f.session(h); err != nil {
		return 0, err
	}
	return len(f.LogText) + 1, nil
}

// Log implements backend.Backend.
func (f *Fake) Log(h backend.Handle, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("log"); err != nil {
		return err
	}
	if _, err := f.session(h); err != nil {
		return err
	}
	copy(buf, f.LogText)
	if len(buf) > len(f.LogText) {
		buf[len(f.LogText)] = 0
	}
	return nil
}

// LiveSessions returns the number of handles that have been created but
// not destroyed.
func (f *Fake) LiveSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// SourceFor returns the source text a live handle was created from.
func (f *Fake) SourceFor(h backend.Handle) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[h]
	if !ok {
		return "", false
	}
	return s.source, true
}
