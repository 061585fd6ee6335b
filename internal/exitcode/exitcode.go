// Package exitcode maps deployer errors to process exit statuses.
package exitcode

import "errors"

// Exit codes returned by the deployer CLI when no stage supplied its own.
const (
	// Success indicates every stage completed.
	Success = 0

	// Failure indicates a runner error outside any stage (lock held, report write failed).
	Failure = 1

	// ConfigError indicates invalid or unreadable settings.
	ConfigError = 2

	// CannotExecute mirrors the shell status for a command found but not executable.
	CannotExecute = 126

	// NotFound mirrors the shell status for a command missing from PATH.
	NotFound = 127

	// SignalBase is added to the signal number when a child is killed by a signal.
	SignalBase = 128
)

// Coder is implemented by errors that carry their own exit status.
type Coder interface {
	ExitCode() int
}

type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }
func (e *configError) ExitCode() int { return ConfigError }

// Config marks err as a configuration problem.
func Config(err error) error {
	if err == nil {
		return nil
	}

	return &configError{err: err}
}

// FromError returns the exit status for err.
// A nil error maps to Success, an error carrying a non-zero code keeps it,
// anything else maps to Failure.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var coder Coder
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code != Success {
			return code
		}
	}

	return Failure
}
