package gpujit

import (
	"fmt"
	"strings"

	"github.com/gpujit/gpujit/errz"
	"github.com/hashicorp/go-multierror"
)

// ProgramOptions is a flat record of optional compiler flags. Every field
// is pointer typed so that absent, explicit-false, and explicit-value are
// three distinct states; an absent field contributes nothing to the
// rendered argument vector.
//
// Rendering follows the backend's own flag grammar, which is uneven on
// purpose: some boolean flags are bare switches that render on presence
// alone (their explicit-false spelling does not exist here), others always
// render --flag=true or --flag=false when present. The grouping is fixed;
// do not normalize it.
//
// YAML tags allow options records to be loaded from configuration files
// (see LoadOptionsFile); omitted keys leave fields absent.
type ProgramOptions struct {
	// GPUArchitecture selects the class of GPU architectures to compile
	// for, e.g. "compute_80". Renders --gpu-architecture=<arch>.
	GPUArchitecture *string `yaml:"gpu-architecture"`

	// DeviceC generates relocatable device code (bare switch, shorthand
	// for --relocatable-device-code=true).
	DeviceC *bool `yaml:"device-c"`

	// DeviceW generates non-relocatable device code (bare switch).
	DeviceW *bool `yaml:"device-w"`

	// RelocatableDeviceCode renders --relocatable-device-code=true|false.
	RelocatableDeviceCode *bool `yaml:"relocatable-device-code"`

	// ExtensibleWholeProgram enables extensible whole program compilation
	// (bare switch).
	ExtensibleWholeProgram *bool `yaml:"extensible-whole-program"`

	// DeviceDebug generates debug information (bare switch).
	DeviceDebug *bool `yaml:"device-debug"`

	// GenerateLineInfo generates line-number information (bare switch).
	GenerateLineInfo *bool `yaml:"generate-line-info"`

	// Dopt controls device code optimization. Renders --dopt=on|off, the
	// backend's own spelling for this one flag.
	Dopt *bool `yaml:"dopt"`

	// PtxasOptions passes options through to the PTX assembler. Renders
	// --ptxas-options=<options>.
	PtxasOptions *string `yaml:"ptxas-options"`

	// MaxRegCount caps the registers a GPU function can use. Renders
	// --maxrregcount=<n>.
	MaxRegCount *int `yaml:"maxrregcount"`

	// Ftz renders --ftz=true|false (flush denormals to zero).
	Ftz *bool `yaml:"ftz"`

	// PrecSqrt renders --prec-sqrt=true|false.
	PrecSqrt *bool `yaml:"prec-sqrt"`

	// PrecDiv renders --prec-div=true|false.
	PrecDiv *bool `yaml:"prec-div"`

	// Fmad renders --fmad=true|false (floating-point multiply-add
	// contraction).
	Fmad *bool `yaml:"fmad"`

	// UseFastMath enables fast math operations (bare switch; note the
	// backend spells this one with underscores).
	UseFastMath *bool `yaml:"use-fast-math"`

	// ExtraDeviceVectorization enables more aggressive vectorization
	// (bare switch).
	ExtraDeviceVectorization *bool `yaml:"extra-device-vectorization"`

	// ModifyStackLimit renders --modify-stack-limit=true|false.
	ModifyStackLimit *bool `yaml:"modify-stack-limit"`

	// DlinkTimeOpt generates intermediate code for link-time optimization
	// (bare switch).
	DlinkTimeOpt *bool `yaml:"dlink-time-opt"`

	// GenOptLTO runs optimizer passes before generating LTO IR (bare
	// switch).
	GenOptLTO *bool `yaml:"gen-opt-lto"`

	// OptixIR generates OptiX IR (bare switch).
	OptixIR *bool `yaml:"optix-ir"`

	// JumpTableDensity sets the case density percentage for switch
	// statements, 0-101. Renders --jump-table-density=<n>.
	JumpTableDensity *int `yaml:"jump-table-density"`

	// DeviceStackProtector renders --device-stack-protector=true|false
	// (stack canaries in device code).
	DeviceStackProtector *bool `yaml:"device-stack-protector"`

	// DefineMacro predefines a macro: one component defines the bare name,
	// two components define name=value. Any other shape is a fatal
	// MalformedMacroDefinition error when the options are rendered.
	DefineMacro MacroDefinition `yaml:"define-macro"`

	// UndefineMacro cancels a previous macro definition. Renders
	// --undefine-macro=<name>.
	UndefineMacro *string `yaml:"undefine-macro"`

	// IncludePath adds a header search directory. Renders
	// --include-path=<dir>.
	IncludePath *string `yaml:"include-path"`

	// PreInclude preincludes a header during preprocessing. Renders
	// --pre-include=<header>.
	PreInclude *string `yaml:"pre-include"`

	// NoSourceInclude disables adding each source's directory to the
	// include path (bare switch).
	NoSourceInclude *bool `yaml:"no-source-include"`

	// Std sets the language dialect, e.g. "c++17". Renders --std=<dialect>.
	Std *string `yaml:"std"`

	// BuiltinMoveForward renders --builtin-move-forward=true|false.
	BuiltinMoveForward *bool `yaml:"builtin-move-forward"`

	// BuiltinInitializerList renders --builtin-initializer-list=true|false.
	BuiltinInitializerList *bool `yaml:"builtin-initializer-list"`

	// DisableWarnings inhibits all warning messages (bare switch).
	DisableWarnings *bool `yaml:"disable-warnings"`

	// Restrict asserts all kernel pointer parameters are restrict
	// pointers (bare switch).
	Restrict *bool `yaml:"restrict"`

	// DeviceAsDefaultExecutionSpace treats unannotated entities as device
	// entities (bare switch).
	DeviceAsDefaultExecutionSpace *bool `yaml:"device-as-default-execution-space"`

	// DeviceInt128 allows __int128 in device code (bare switch).
	DeviceInt128 *bool `yaml:"device-int128"`

	// OptimizationInfo requests optimization reports of the given kind.
	// Renders --optimization-info=<kind>.
	OptimizationInfo *string `yaml:"optimization-info"`

	// DisplayErrorNumber shows diagnostic numbers for warnings (bare
	// switch).
	DisplayErrorNumber *bool `yaml:"display-error-number"`

	// NoDisplayErrorNumber disables diagnostic numbers for warnings (bare
	// switch).
	NoDisplayErrorNumber *bool `yaml:"no-display-error-number"`

	// DiagError promotes the given diagnostic numbers to errors. Renders
	// --diag-error=<list>.
	DiagError *string `yaml:"diag-error"`

	// DiagSuppress suppresses the given diagnostic numbers. Renders
	// --diag-suppress=<list>.
	DiagSuppress *string `yaml:"diag-suppress"`

	// DiagWarn emits warnings for the given diagnostic numbers. Renders
	// --diag-warn=<list>.
	DiagWarn *string `yaml:"diag-warn"`

	// BriefDiagnostics renders --brief-diagnostics=true|false.
	BriefDiagnostics *bool `yaml:"brief-diagnostics"`

	// Time writes a CSV of per-phase compile times to the given file.
	// Renders --time=<file>.
	Time *string `yaml:"time"`

	// SplitCompile sets the number of threads for parallel compiler
	// optimization. Renders --split-compile=<n>.
	SplitCompile *int `yaml:"split-compile"`

	// FdeviceSyntaxOnly stops after front-end syntax checking (bare
	// switch).
	FdeviceSyntaxOnly *bool `yaml:"fdevice-syntax-only"`

	// Minimal omits certain language features to speed up small compiles
	// (bare switch).
	Minimal *bool `yaml:"minimal"`
}

// MacroDefinition is a macro to predefine: one component for a bare name,
// two for a name/value pair. In YAML it may be written either as a scalar
// ("NAME") or as a sequence ([NAME, value]).
type MacroDefinition []string

// Bool returns a pointer to v, for populating ProgramOptions fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for populating ProgramOptions fields.
func Int(v int) *int { return &v }

// String returns a pointer to v, for populating ProgramOptions fields.
func String(v string) *string { return &v }

// Args renders the argument vector the backend expects. Absent fields emit
// nothing; present fields emit exactly one argument each, in declared field
// order, so rendering is deterministic for a given record. The only
// possible failure is a malformed macro definition.
func (o *ProgramOptions) Args() ([]string, error) {
	if o == nil {
		return nil, nil
	}
	var args []string
	appendValued := func(flag string, v *string) {
		if v != nil {
			args = append(args, fmt.Sprintf("--%s=%s", flag, *v))
		}
	}
	appendInt := func(flag string, v *int) {
		if v != nil {
			args = append(args, fmt.Sprintf("--%s=%d", flag, *v))
		}
	}
	// Bare switches key on presence, not value: a pointer to false still
	// renders the switch, matching the backend's flag grammar in which
	// these flags have no --flag=false spelling.
	appendBare := func(flag string, v *bool) {
		if v != nil {
			args = append(args, "--"+flag)
		}
	}
	appendToggle := func(flag string, v *bool) {
		if v != nil {
			args = append(args, fmt.Sprintf("--%s=%t", flag, *v))
		}
	}

	appendValued("gpu-architecture", o.GPUArchitecture)
	appendBare("device-c", o.DeviceC)
	appendBare("device-w", o.DeviceW)
	appendToggle("relocatable-device-code", o.RelocatableDeviceCode)
	appendBare("extensible-whole-program", o.ExtensibleWholeProgram)
	appendBare("device-debug", o.DeviceDebug)
	appendBare("generate-line-info", o.GenerateLineInfo)
	if o.Dopt != nil {
		if *o.Dopt {
			args = append(args, "--dopt=on")
		} else {
			args = append(args, "--dopt=off")
		}
	}
	appendValued("ptxas-options", o.PtxasOptions)
	appendInt("maxrregcount", o.MaxRegCount)
	appendToggle("ftz", o.Ftz)
	appendToggle("prec-sqrt", o.PrecSqrt)
	appendToggle("prec-div", o.PrecDiv)
	appendToggle("fmad", o.Fmad)
	appendBare("use_fast_math", o.UseFastMath)
	appendBare("extra-device-vectorization", o.ExtraDeviceVectorization)
	appendToggle("modify-stack-limit", o.ModifyStackLimit)
	appendBare("dlink-time-opt", o.DlinkTimeOpt)
	appendBare("gen-opt-lto", o.GenOptLTO)
	appendBare("optix-ir", o.OptixIR)
	appendInt("jump-table-density", o.JumpTableDensity)
	appendToggle("device-stack-protector", o.DeviceStackProtector)
	if o.DefineMacro != nil {
		macro, err := formatMacro(o.DefineMacro)
		if err != nil {
			return nil, err
		}
		args = append(args, macro)
	}
	appendValued("undefine-macro", o.UndefineMacro)
	appendValued("include-path", o.IncludePath)
	appendValued("pre-include", o.PreInclude)
	appendBare("no-source-include", o.NoSourceInclude)
	appendValued("std", o.Std)
	appendToggle("builtin-move-forward", o.BuiltinMoveForward)
	appendToggle("builtin-initializer-list", o.BuiltinInitializerList)
	appendBare("disable-warnings", o.DisableWarnings)
	appendBare("restrict", o.Restrict)
	appendBare("device-as-default-execution-space", o.DeviceAsDefaultExecutionSpace)
	appendBare("device-int128", o.DeviceInt128)
	appendValued("optimization-info", o.OptimizationInfo)
	appendBare("display-error-number", o.DisplayErrorNumber)
	appendBare("no-display-error-number", o.NoDisplayErrorNumber)
	appendValued("diag-error", o.DiagError)
	appendValued("diag-suppress", o.DiagSuppress)
	appendValued("diag-warn", o.DiagWarn)
	appendToggle("brief-diagnostics", o.BriefDiagnostics)
	appendValued("time", o.Time)
	appendInt("split-compile", o.SplitCompile)
	appendBare("fdevice-syntax-only", o.FdeviceSyntaxOnly)
	appendBare("minimal", o.Minimal)

	return args, nil
}

func formatMacro(components []string) (string, error) {
	switch len(components) {
	case 1:
		return "--define-macro=" + components[0], nil
	case 2:
		return fmt.Sprintf("--define-macro=%s=%s", components[0], components[1]), nil
	default:
		return "", errz.New(errz.MalformedMacroDefinition,
			"define-macro requires one or two components, got %d", len(components))
	}
}

// Validate checks field values against the ranges the backend documents
// and reports every problem found, not just the first. Validation is
// advisory: Args and Program construction only reject malformed macro
// definitions, and leave the rest for the backend to diagnose.
func (o *ProgramOptions) Validate() error {
	if o == nil {
		return nil
	}
	var result *multierror.Error
	if o.JumpTableDensity != nil && (*o.JumpTableDensity < 0 || *o.JumpTableDensity > 101) {
		result = multierror.Append(result, fmt.Errorf(
			"jump-table-density must be in [0, 101], got %d", *o.JumpTableDensity))
	}
	if o.MaxRegCount != nil && *o.MaxRegCount < 0 {
		result = multierror.Append(result, fmt.Errorf(
			"maxrregcount must be non-negative, got %d", *o.MaxRegCount))
	}
	if o.SplitCompile != nil && *o.SplitCompile < 0 {
		result = multierror.Append(result, fmt.Errorf(
			"split-compile must be non-negative, got %d", *o.SplitCompile))
	}
	if o.DefineMacro != nil {
		if _, err := formatMacro(o.DefineMacro); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if o.Std != nil && !knownDialects[strings.ToLower(*o.Std)] {
		result = multierror.Append(result, fmt.Errorf(
			"std must be one of c++03, c++11, c++14, c++17, c++20, got %q", *o.Std))
	}
	return result.ErrorOrNil()
}

var knownDialects = map[string]bool{
	"c++03": true,
	"c++11": true,
	"c++14": true,
	"c++17": true,
	"c++20": true,
}
