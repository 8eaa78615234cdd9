package diag

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestWriterPassesTextThrough(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var out bytes.Buffer
	w := NewWriter(&out)
	log := "kernel.cu(1): error: expected a \";\"\n" +
		"kernel.cu(2): warning: variable \"x\" was declared but never referenced\n" +
		"1 error detected in the compilation of \"kernel.cu\".\n"
	n, err := w.Write([]byte(log))
	require.Nil(t, err)
	require.Equal(t, len(log), n)
	require.Nil(t, w.Flush())
	require.Equal(t, log, out.String())
}

func TestWriterBuffersPartialLines(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var out bytes.Buffer
	w := NewWriter(&out)
	_, err := w.Write([]byte("kernel.cu(1): warn"))
	require.Nil(t, err)
	require.Empty(t, out.String())

	_, err = w.Write([]byte("ing: unused variable\n"))
	require.Nil(t, err)
	require.Equal(t, "kernel.cu(1): warning: unused variable\n", out.String())
}

func TestWriterFlushEmitsRemainder(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var out bytes.Buffer
	w := NewWriter(&out)
	_, err := w.Write([]byte("no trailing newline"))
	require.Nil(t, err)
	require.Nil(t, w.Flush())
	require.Equal(t, "no trailing newline\n", out.String())
	require.Nil(t, w.Flush()) // nothing left
	require.Equal(t, 1, strings.Count(out.String(), "\n"))
}

// sinkLimit fails every write past a configurable count.
type sinkLimit struct {
	w      io.Writer
	writes int
	limit  int
}

func (s *sinkLimit) Write(p []byte) (int, error) {
	if s.writes >= s.limit {
		return 0, errors.New("sink full")
	}
	s.writes++
	return s.w.Write(p)
}

func TestWriterReportsConsumedBytesOnError(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var out bytes.Buffer
	sink := &sinkLimit{w: &out, limit: 1}
	w := NewWriter(sink)

	input := "first line\nsecond line\n"
	n, err := w.Write([]byte(input))
	require.NotNil(t, err)
	require.Equal(t, len("first line\n"), n)
	require.Equal(t, "first line\n", out.String())

	// The failed line stays buffered and is emitted once the sink
	// recovers.
	sink.writes = 0
	n, err = w.Write(nil)
	require.Nil(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, input, out.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want severity
	}{
		{`kernel.cu(1): error: expected a ";"`, sevError},
		{"nvrtc: fatal: unknown option", sevError},
		{"kernel.cu(2): warning: unused variable", sevWarning},
		{"kernel.cu(3): note: in expansion of macro", sevNote},
		{"1 error detected", sevPlain},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, classify(tt.line), tt.line)
	}
}
