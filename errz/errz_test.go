package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "unsupported language", UnsupportedLanguage.String())
	require.Equal(t, "session closed", SessionClosed.String())
	require.Equal(t, "error", Kind(99).String())
}

func TestErrorMessage(t *testing.T) {
	err := New(UnsupportedTargetFormat, "%q is not supported", "fatbin")
	require.Equal(t, `unsupported target format: "fatbin" is not supported`, err.Error())

	bare := &Error{Kind: SessionClosed}
	require.Equal(t, "session closed", bare.Error())
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := New(MalformedMacroDefinition, "three components")
	require.True(t, errors.Is(err, MalformedMacroDefinition))
	require.False(t, errors.Is(err, UnsupportedLanguage))

	// Kind matching survives further wrapping.
	wrapped := fmt.Errorf("compile: %w", err)
	require.True(t, errors.Is(wrapped, MalformedMacroDefinition))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("native failure")
	err := Wrap(Backend, cause, "")
	require.Equal(t, "backend error: native failure", err.Error())
	require.True(t, errors.Is(err, Backend))
	require.True(t, errors.Is(err, cause))

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, Backend, e.Kind)
}
