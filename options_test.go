package gpujit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpujit/gpujit/errz"
)

func TestOptionsAbsentFieldsRenderNothing(t *testing.T) {
	args, err := (&ProgramOptions{}).Args()
	require.Nil(t, err)
	require.Empty(t, args)

	var nilOpts *ProgramOptions
	args, err = nilOpts.Args()
	require.Nil(t, err)
	require.Empty(t, args)
}

func TestOptionsRenderingForms(t *testing.T) {
	tests := []struct {
		name string
		opts ProgramOptions
		want []string
	}{
		{
			name: "valued string",
			opts: ProgramOptions{GPUArchitecture: String("compute_80")},
			want: []string{"--gpu-architecture=compute_80"},
		},
		{
			name: "valued int",
			opts: ProgramOptions{MaxRegCount: Int(32)},
			want: []string{"--maxrregcount=32"},
		},
		{
			name: "bare switch true",
			opts: ProgramOptions{UseFastMath: Bool(true)},
			want: []string{"--use_fast_math"},
		},
		{
			// Bare switches key on presence: an explicit false still
			// renders the switch, mirroring the backend's flag grammar.
			name: "bare switch explicit false",
			opts: ProgramOptions{DeviceC: Bool(false)},
			want: []string{"--device-c"},
		},
		{
			name: "toggle true",
			opts: ProgramOptions{RelocatableDeviceCode: Bool(true)},
			want: []string{"--relocatable-device-code=true"},
		},
		{
			name: "toggle false",
			opts: ProgramOptions{Fmad: Bool(false)},
			want: []string{"--fmad=false"},
		},
		{
			name: "dopt on",
			opts: ProgramOptions{Dopt: Bool(true)},
			want: []string{"--dopt=on"},
		},
		{
			name: "dopt off",
			opts: ProgramOptions{Dopt: Bool(false)},
			want: []string{"--dopt=off"},
		},
		{
			name: "macro bare name",
			opts: ProgramOptions{DefineMacro: []string{"MY_MACRO"}},
			want: []string{"--define-macro=MY_MACRO"},
		},
		{
			name: "macro name value pair",
			opts: ProgramOptions{DefineMacro: []string{"N", "128"}},
			want: []string{"--define-macro=N=128"},
		},
		{
			name: "mixed fields in declared order",
			opts: ProgramOptions{
				Ftz:      Bool(true),
				PrecSqrt: Bool(false),
				PrecDiv:  Bool(false),
			},
			want: []string{"--ftz=true", "--prec-sqrt=false", "--prec-div=false"},
		},
		{
			name: "diagnostics",
			opts: ProgramOptions{
				DiagError:        String("1234"),
				DiagSuppress:     String("5678"),
				BriefDiagnostics: Bool(true),
			},
			want: []string{"--diag-error=1234", "--diag-suppress=5678", "--brief-diagnostics=true"},
		},
		{
			name: "compile phases",
			opts: ProgramOptions{
				Time:         String("compile_time.csv"),
				SplitCompile: Int(4),
			},
			want: []string{"--time=compile_time.csv", "--split-compile=4"},
		},
		{
			name: "front end only",
			opts: ProgramOptions{
				FdeviceSyntaxOnly: Bool(true),
				Minimal:           Bool(true),
			},
			want: []string{"--fdevice-syntax-only", "--minimal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := tt.opts.Args()
			require.Nil(t, err)
			require.Equal(t, tt.want, args)
		})
	}
}

func TestOptionsRenderingIsDeterministic(t *testing.T) {
	opts := ProgramOptions{
		GPUArchitecture:  String("compute_90"),
		DeviceDebug:      Bool(true),
		GenerateLineInfo: Bool(true),
		DefineMacro:      []string{"DEBUG", "1"},
		IncludePath:      String("/usr/local/include"),
		Std:              String("c++17"),
	}
	first, err := opts.Args()
	require.Nil(t, err)
	for i := 0; i < 5; i++ {
		again, err := opts.Args()
		require.Nil(t, err)
		require.Equal(t, first, again)
	}
}

func TestOptionsEachPresentFieldRendersOnce(t *testing.T) {
	opts := ProgramOptions{
		DeviceW:      Bool(true),
		Dopt:         Bool(true),
		PtxasOptions: String("-v"),
	}
	args, err := opts.Args()
	require.Nil(t, err)
	require.Equal(t, []string{"--device-w", "--dopt=on", "--ptxas-options=-v"}, args)
}

func TestOptionsMalformedMacro(t *testing.T) {
	for _, components := range [][]string{
		{},
		{"A", "B", "C"},
	} {
		opts := ProgramOptions{DefineMacro: components}
		_, err := opts.Args()
		require.NotNil(t, err)
		require.True(t, errors.Is(err, errz.MalformedMacroDefinition))
	}
}

func TestOptionsValidateAggregatesProblems(t *testing.T) {
	opts := ProgramOptions{
		JumpTableDensity: Int(200),
		SplitCompile:     Int(-1),
		DefineMacro:      []string{"A", "B", "C"},
		Std:              String("c++31"),
	}
	err := opts.Validate()
	require.NotNil(t, err)
	msg := err.Error()
	require.Contains(t, msg, "jump-table-density")
	require.Contains(t, msg, "split-compile")
	require.Contains(t, msg, "define-macro")
	require.Contains(t, msg, "std")
}

func TestOptionsValidateAccepts(t *testing.T) {
	opts := ProgramOptions{
		JumpTableDensity: Int(50),
		SplitCompile:     Int(4),
		DefineMacro:      []string{"N", "128"},
		Std:              String("c++20"),
	}
	require.Nil(t, opts.Validate())
	require.Nil(t, (*ProgramOptions)(nil).Validate())
}
