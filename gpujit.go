// Package gpujit is a thin wrapper around a just-in-time device-code
// compiler. It formats structured compiler options into the argument
// vector the backend expects, manages the opaque compilation handle's
// lifecycle, and forwards compiled output and diagnostic log text to the
// caller. The actual compilation happens entirely inside the backend; this
// package never sees an AST, IR, or instruction stream.
//
// Typical use:
//
//	opts := &gpujit.ProgramOptions{
//		GPUArchitecture: gpujit.String("compute_80"),
//		UseFastMath:     gpujit.Bool(true),
//	}
//	program, err := gpujit.New(source, backend.CPP, opts)
//	if err != nil {
//		return err
//	}
//	defer program.Close()
//	code, err := program.Compile(backend.Cubin, nil, os.Stderr)
//
// CompileSource collapses the construct/compile/close sequence into one
// call for callers that compile once.
package gpujit

import (
	"github.com/gpujit/gpujit/backend"
	"github.com/gpujit/gpujit/objcode"
)

// CompileSource compiles source text to the given target format in one
// shot: it constructs a Program, compiles it, and closes it. The source
// language is backend.CPP. Name expressions and a diagnostic log sink may
// be supplied via WithNameExpressions and WithLogOutput.
func CompileSource(source string, target backend.TargetFormat, options *ProgramOptions, opts ...Option) (*objcode.ObjectCode, error) {
	cfg := collectOptions(opts...)
	program, err := newProgram(cfg, source, backend.CPP, options)
	if err != nil {
		return nil, err
	}
	defer program.Close()
	return program.Compile(target, cfg.nameExpressions, cfg.logOutput)
}
