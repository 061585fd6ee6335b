package banner

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPrintPlain verifies the banner layout without colour codes.
func TestPrintPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := New(&buf)
	require.NoError(t, p.Print(2, 4, "Installing dependencies"))
	require.Equal(t, "==> [2/4] Installing dependencies\n", buf.String())
}

// TestPrintColor ensures forced colour wraps the text in escape sequences.
func TestPrintColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := New(&buf, WithColor(true))
	require.NoError(t, p.Print(1, 4, "Upgrading package installer"))
	require.Contains(t, buf.String(), "\x1b[")
	require.Contains(t, buf.String(), "Upgrading package installer")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// TestPrintWriteError surfaces writer failures.
func TestPrintWriteError(t *testing.T) {
	t.Parallel()

	require.Error(t, New(failingWriter{}).Print(1, 1, "x"))
}
