package gpujit

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/gpujit/gpujit/backend"
	"github.com/gpujit/gpujit/backend/nvrtc"
)

// Option describes a function used to configure program construction and
// one-shot compilation. These configure the wrapper itself; compiler flags
// belong in ProgramOptions.
type Option func(*config)

type config struct {
	backend         backend.Backend
	logger          zerolog.Logger
	nameExpressions []string
	logOutput       io.Writer
}

func collectOptions(opts ...Option) *config {
	cfg := &config{
		backend: nvrtc.New(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithBackend selects the compiler backend. The default is NVRTC.
func WithBackend(b backend.Backend) Option {
	return func(cfg *config) {
		cfg.backend = b
	}
}

// WithLogger sets the logger used for program lifecycle events. Events are
// emitted at debug level with the program's ID attached. The default
// logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithNameExpressions supplies symbol name expressions to register before
// compilation, so the compiled artifact can map each one to its lowered
// name. Only CompileSource consumes this; Program.Compile takes the
// expressions directly.
func WithNameExpressions(exprs ...string) Option {
	return func(cfg *config) {
		cfg.nameExpressions = append(cfg.nameExpressions, exprs...)
	}
}

// WithLogOutput supplies a sink for the backend's diagnostic log text.
// Only CompileSource consumes this; Program.Compile takes the sink
// directly. Wrap the sink with diag.NewWriter for colorized output.
func WithLogOutput(w io.Writer) Option {
	return func(cfg *config) {
		cfg.logOutput = w
	}
}
