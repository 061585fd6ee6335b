package runlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/deployer/internal/logger"
)

// ErrLocked is returned when another deploy holds the lock.
var ErrLocked = errors.New("another deploy is running")

// Lock is a held deploy lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the lock at path without blocking.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	path = filepath.Clean(path)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	if !acquired {
		return nil, lockedError(ctx, path)
	}

	logger.DebugKV(ctx, "Deploy lock acquired", "path", path)

	return &Lock{flock: fl, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the lock. The file is left in place: deleting it would let
// a waiting process lock an unlinked inode while a third one creates a new file.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}

	return nil
}

// OtherProcesses returns the PIDs of processes running the given executable,
// excluding the current one.
func OtherProcesses(executable string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()
	result := make([]int, 0)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !sameExecutable(process.Executable(), executable) {
			continue
		}

		result = append(result, process.Pid())
	}

	return result, nil
}

// lockedError builds ErrLocked enriched with the PIDs of likely holders.
func lockedError(ctx context.Context, path string) error {
	pids, err := OtherProcesses(currentExecutable())
	if err != nil {
		logger.DebugKV(ctx, "Unable to inspect process table", "error", err)
	}

	if len(pids) == 0 {
		return fmt.Errorf("%s: %w", path, ErrLocked)
	}

	return fmt.Errorf("%s held by pid %v: %w", path, pids, ErrLocked)
}

func currentExecutable() string {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}

	return filepath.Base(executable)
}

// sameExecutable compares process names, allowing for the kernel truncating
// them (15 characters on Linux).
func sameExecutable(processName, executable string) bool {
	if processName == "" {
		return false
	}

	if strings.EqualFold(processName, executable) {
		return true
	}

	return len(processName) >= 15 && strings.HasPrefix(executable, processName)
}
