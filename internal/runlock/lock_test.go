package runlock

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAcquireRelease verifies the lock is exclusive until released.
func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".deployer.lock")

	first, err := Acquire(ctx, path)
	require.NoError(t, err)
	require.Equal(t, path, first.Path())

	_, err = Acquire(ctx, path)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	second, err := Acquire(ctx, path)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

// TestAcquireMissingDirectory surfaces filesystem errors other than contention.
func TestAcquireMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Acquire(context.Background(), filepath.Join(t.TempDir(), "missing", "lock"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrLocked)
}

// TestReleaseNil is a no-op for a lock that was never acquired.
func TestReleaseNil(t *testing.T) {
	t.Parallel()

	var l *Lock
	require.NoError(t, l.Release())
}

// TestOtherProcessesExcludesSelf ensures the current process is never reported.
func TestOtherProcessesExcludesSelf(t *testing.T) {
	t.Parallel()

	pids, err := OtherProcesses(currentExecutable())
	require.NoError(t, err)
	require.NotContains(t, pids, os.Getpid())
}

// TestSameExecutable covers exact and truncated process names.
func TestSameExecutable(t *testing.T) {
	t.Parallel()

	require.True(t, sameExecutable("deployer", "deployer"))
	require.True(t, sameExecutable("deployer-linux-", "deployer-linux-amd64"))
	require.False(t, sameExecutable("deploy", "deployer"))
	require.False(t, sameExecutable("", "deployer"))
}
