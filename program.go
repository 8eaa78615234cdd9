package gpujit

import (
	"io"
	"runtime"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/gpujit/gpujit/backend"
	"github.com/gpujit/gpujit/errz"
	"github.com/gpujit/gpujit/objcode"
)

// Program is one compilation session against the backend. It owns exactly
// one backend handle, created from source text at construction and
// released by Close. A Program may be compiled any number of times, with
// different target formats, while open; the backend decides whether
// repeated compiles are cheap.
//
// The handle is not shared between sessions. An internal mutex serializes
// calls on the same Program so that concurrent misuse degrades to blocking
// rather than corrupting the native handle.
type Program struct {
	mu      sync.Mutex
	backend backend.Backend
	handle  backend.Handle // NoHandle once closed
	args    []string       // rendered once at construction, immutable
	source  string
	id      string
	logger  zerolog.Logger
}

// New creates a compilation session from source text. The source must be a
// string or a []byte of UTF-8 text, and language must be backend.CPP; the
// option record is rendered exactly once here and reused by every Compile.
// Headers and include names are not passed to the backend at this stage (a
// deliberate limitation of the session contract).
//
// The language and source checks run before any backend handle is
// allocated. If the caller never calls Close, a finalizer releases the
// handle; relying on it leaves release timing to the garbage collector, so
// explicit Close (usually deferred) is the contract.
func New(source any, language backend.Language, options *ProgramOptions, opts ...Option) (*Program, error) {
	return newProgram(collectOptions(opts...), source, language, options)
}

func newProgram(cfg *config, source any, language backend.Language, options *ProgramOptions) (*Program, error) {
	if !language.Supported() {
		return nil, errz.New(errz.UnsupportedLanguage, "%q is not a supported source language", language)
	}
	var text string
	switch s := source.(type) {
	case string:
		text = s
	case []byte:
		text = string(s)
	default:
		return nil, errz.New(errz.InvalidSourceType, "source must be a string or []byte, got %T", source)
	}

	args, err := options.Args()
	if err != nil {
		return nil, err
	}

	handle, err := cfg.backend.Create(text)
	if err != nil {
		return nil, errz.Wrap(errz.Backend, err, "")
	}

	p := &Program{
		backend: cfg.backend,
		handle:  handle,
		args:    args,
		source:  text,
		id:      uuid.Must(uuid.NewV4()).String(),
		logger:  cfg.logger,
	}
	p.logger.Debug().
		Str("program_id", p.id).
		Str("backend", p.backend.Name()).
		Int("option_count", len(args)).
		Msg("program created")

	runtime.SetFinalizer(p, (*Program).finalize)
	return p, nil
}

// Compile runs the backend compilation and returns the output for one
// target format. nameExpressions are registered with the backend before
// compiling so their lowered names can be resolved afterwards; the
// resulting artifact maps each expression to its lowered name, in request
// order. If logs is non-nil and the backend produced a non-trivial
// diagnostic log, the log text is written to it. The sink is the only
// channel diagnostics are reported on, for failed and successful compiles
// alike.
func (p *Program) Compile(target backend.TargetFormat, nameExpressions []string, logs io.Writer) (*objcode.ObjectCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !target.Compilable() {
		return nil, errz.New(errz.UnsupportedTargetFormat, "%q is not a supported target format", target)
	}
	if p.handle == backend.NoHandle {
		return nil, errz.New(errz.SessionClosed, "program has been closed")
	}

	for _, expr := range nameExpressions {
		if err := p.backend.AddNameExpression(p.handle, expr); err != nil {
			return nil, errz.Wrap(errz.Backend, err, "")
		}
	}

	err := p.backend.Compile(p.handle, p.args)
	p.writeLog(logs)
	if err != nil {
		return nil, errz.Wrap(errz.Backend, err, "")
	}

	size, err := p.backend.OutputSize(p.handle, target)
	if err != nil {
		return nil, errz.Wrap(errz.Backend, err, "")
	}
	data := make([]byte, size)
	if err := p.backend.Output(p.handle, target, data); err != nil {
		return nil, errz.Wrap(errz.Backend, err, "")
	}

	var symbols []objcode.Option
	for _, expr := range nameExpressions {
		lowered, err := p.backend.LoweredName(p.handle, expr)
		if err != nil {
			return nil, errz.Wrap(errz.Backend, err, "")
		}
		symbols = append(symbols, objcode.WithSymbol(expr, lowered))
	}

	p.logger.Debug().
		Str("program_id", p.id).
		Str("target", string(target)).
		Int("output_bytes", len(data)).
		Int("name_expressions", len(nameExpressions)).
		Msg("program compiled")

	return objcode.New(data, target, symbols...)
}

// writeLog copies the backend's diagnostic log to the sink, if one was
// supplied and the log is non-trivial. Log retrieval failures are not
// reported: the log is best-effort and must not mask the compile result.
func (p *Program) writeLog(logs io.Writer) {
	if logs == nil {
		return
	}
	size, err := p.backend.LogSize(p.handle)
	if err != nil || size <= 1 {
		return
	}
	buf := make([]byte, size)
	if err := p.backend.Log(p.handle, buf); err != nil {
		return
	}
	// The backend reports the size including the trailing NUL.
	if n := len(buf); n > 0 && buf[n-1] == 0 {
		buf = buf[:n-1]
	}
	_, _ = logs.Write(buf)
}

// Close releases the backend handle. It is idempotent: closing an already
// closed Program is a no-op, and the handle is never released twice. The
// handle reference is cleared even if the backend's destroy call fails, so
// the session can never be released twice.
func (p *Program) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Program) closeLocked() error {
	if p.handle == backend.NoHandle {
		return nil
	}
	handle := p.handle
	p.handle = backend.NoHandle
	runtime.SetFinalizer(p, nil)
	if err := p.backend.Destroy(handle); err != nil {
		p.logger.Debug().Str("program_id", p.id).Err(err).Msg("program destroy failed")
		return errz.Wrap(errz.Backend, err, "")
	}
	p.logger.Debug().Str("program_id", p.id).Msg("program closed")
	return nil
}

func (p *Program) finalize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.closeLocked()
}

// Backend returns the backend this program compiles with.
func (p *Program) Backend() backend.Backend {
	return p.backend
}

// Handle returns the backend handle, or backend.NoHandle after Close.
func (p *Program) Handle() backend.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// ID returns the program's unique identifier, used for log correlation.
func (p *Program) ID() string {
	return p.id
}

// Source returns the source text the program was created from.
func (p *Program) Source() string {
	return p.source
}

// Options returns a copy of the rendered option argument vector.
func (p *Program) Options() []string {
	args := make([]string, len(p.args))
	copy(args, p.args)
	return args
}
