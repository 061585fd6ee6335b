package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type codedError int

func (e codedError) Error() string { return fmt.Sprintf("exit %d", int(e)) }
func (e codedError) ExitCode() int { return int(e) }

// TestFromError covers nil, coded, wrapped, config and plain errors.
func TestFromError(t *testing.T) {
	t.Parallel()

	require.Equal(t, Success, FromError(nil))
	require.Equal(t, Failure, FromError(errors.New("boom")))
	require.Equal(t, 3, FromError(codedError(3)))
	require.Equal(t, 3, FromError(fmt.Errorf("stage failed: %w", codedError(3))))
	require.Equal(t, Failure, FromError(codedError(0)))
	require.Equal(t, ConfigError, FromError(Config(errors.New("bad yaml"))))
	require.NoError(t, Config(nil))
}

// TestConfigUnwrap keeps the cause reachable through errors.Is.
func TestConfigUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("missing")
	require.ErrorIs(t, Config(cause), cause)
}
