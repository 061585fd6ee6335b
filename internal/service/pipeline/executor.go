package pipeline

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"github.com/oshokin/deployer/internal/domain/deploy"
	"github.com/oshokin/deployer/internal/exitcode"
)

// Executor runs a single stage and returns its exit status.
// A non-zero status is always accompanied by a non-nil error.
type Executor interface {
	Execute(ctx context.Context, stage deploy.Stage) (int, error)
}

// CommandExecutor runs stages as child processes that inherit the
// environment and share the deployer's standard streams.
type CommandExecutor struct {
	// stdout receives the child's standard output.
	stdout io.Writer
	// stderr receives the child's standard error.
	stderr io.Writer
	// env replaces the inherited environment when non-nil.
	env []string
}

// ExecutorOption configures a CommandExecutor.
type ExecutorOption func(*CommandExecutor)

// WithOutput redirects the child's standard streams.
func WithOutput(stdout, stderr io.Writer) ExecutorOption {
	return func(e *CommandExecutor) {
		if stdout != nil {
			e.stdout = stdout
		}

		if stderr != nil {
			e.stderr = stderr
		}
	}
}

// WithEnv replaces the inherited environment of every child.
func WithEnv(env []string) ExecutorOption {
	return func(e *CommandExecutor) {
		e.env = env
	}
}

// NewCommandExecutor creates an executor writing to os.Stdout and os.Stderr.
func NewCommandExecutor(opts ...ExecutorOption) *CommandExecutor {
	e := &CommandExecutor{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs the stage command and waits for it to finish.
func (e *CommandExecutor) Execute(ctx context.Context, stage deploy.Stage) (int, error) {
	//nolint:gosec // Running configured deploy commands is the whole point.
	cmd := exec.CommandContext(ctx, stage.Command, stage.Args...)
	cmd.Dir = stage.Dir
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	cmd.Env = e.env

	err := cmd.Run()

	return ExitStatus(err), err
}

// ExitStatus converts the error returned by exec.Cmd.Run into a shell-style
// exit status: the tool's own code, 127 when the command is missing, 126 when
// it cannot be executed and 128+N when it was killed by signal N.
func ExitStatus(err error) int {
	if err == nil {
		return exitcode.Success
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}

		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return exitcode.SignalBase + int(status.Signal())
		}

		return exitcode.Failure
	}

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return exitcode.NotFound
	case errors.Is(err, fs.ErrPermission):
		return exitcode.CannotExecute
	default:
		return exitcode.Failure
	}
}
