package deploy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stage names in execution order.
const (
	StageUpgradeInstaller    = "upgrade-installer"
	StageInstallDependencies = "install-dependencies"
	StageMigrate             = "migrate"
	StageCollectStatic       = "collect-static"
)

// Stage is one external command invocation within the fixed sequence.
type Stage struct {
	// Name is the stable identifier of the stage.
	Name string
	// Banner is the progress text printed before the stage starts.
	Banner string
	// Command is the executable to run.
	Command string
	// Args are passed to Command verbatim.
	Args []string
	// Dir is the working directory of the command.
	Dir string
}

// CommandLine renders the command and its arguments for display.
func (s Stage) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Command)

	for _, arg := range s.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}

		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// StageResult records the outcome of one executed stage.
type StageResult struct {
	// Stage is the stage name.
	Stage string `yaml:"stage"`
	// Command is the rendered command line.
	Command string `yaml:"command"`
	// ExitCode is the status the command exited with.
	ExitCode int `yaml:"exit_code"`
	// StartedAt is when the command was started.
	StartedAt time.Time `yaml:"started_at"`
	// Duration is how long the command ran.
	Duration time.Duration `yaml:"duration"`
}

// Succeeded reports whether the stage exited with status zero.
func (r StageResult) Succeeded() bool {
	return r.ExitCode == 0
}

// ErrStageFailed is matched by every StageError.
var ErrStageFailed = errors.New("stage failed")

// StageError reports the first stage that exited non-zero.
type StageError struct {
	// Stage is the failed stage name.
	Stage string
	// Code is the exit status propagated to the process.
	Code int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s exited with status %d: %v", e.Stage, e.Code, e.Err)
	}

	return fmt.Sprintf("stage %s exited with status %d", e.Stage, e.Code)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStageFailed.
func (e *StageError) Is(target error) bool {
	return target == ErrStageFailed
}

// ExitCode returns the status the process should exit with.
func (e *StageError) ExitCode() int {
	return e.Code
}
