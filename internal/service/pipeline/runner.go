package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/deployer/internal/domain/deploy"
	"github.com/oshokin/deployer/internal/exitcode"
	"github.com/oshokin/deployer/internal/logger"
)

// errNoStages is returned when Run is called with an empty stage list.
var errNoStages = errors.New("no stages to run")

// BannerPrinter prints the progress line shown before each stage.
type BannerPrinter interface {
	Print(index, total int, text string) error
}

// Runner executes stages sequentially and stops at the first failure.
type Runner struct {
	// executor runs the individual stage commands.
	executor Executor
	// banner prints stage banners; nil disables them.
	banner BannerPrinter
	// now is the clock used for result timestamps.
	now func() time.Time
	// newID generates run identifiers.
	newID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithBanner sets the banner printer.
func WithBanner(banner BannerPrinter) Option {
	return func(r *Runner) {
		r.banner = banner
	}
}

// WithClock replaces the clock used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunID replaces the run identifier generator.
func WithRunID(newID func() string) Option {
	return func(r *Runner) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// NewRunner creates a Runner backed by the given executor.
func NewRunner(executor Executor, opts ...Option) *Runner {
	r := &Runner{
		executor: executor,
		now:      time.Now,
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the stages in order. The returned Run holds the results of
// every stage that was started; on failure the error is a *deploy.StageError
// carrying the failed stage's exit status.
func (r *Runner) Run(ctx context.Context, stages []deploy.Stage) (*deploy.Run, error) {
	if len(stages) == 0 {
		return nil, errNoStages
	}

	run := &deploy.Run{
		ID:        r.newID(),
		StartedAt: r.now(),
		Stages:    make([]deploy.StageResult, 0, len(stages)),
	}

	ctx = logger.WithKV(ctx, "run_id", run.ID)

	for i, stage := range stages {
		if err := r.runStage(ctx, run, i, len(stages), stage); err != nil {
			run.FinishedAt = r.now()

			return run, err
		}
	}

	run.FinishedAt = r.now()
	logger.InfoKV(ctx, "Deploy completed", "stages", len(run.Stages), "duration", run.FinishedAt.Sub(run.StartedAt))

	return run, nil
}

// runStage prints the banner, executes the stage and records its result.
func (r *Runner) runStage(ctx context.Context, run *deploy.Run, index, total int, stage deploy.Stage) error {
	// A signal between stages stops the run before the next command starts.
	if err := ctx.Err(); err != nil {
		return r.fail(ctx, run, stage.Name, exitcode.Failure, fmt.Errorf("interrupted: %w", err))
	}

	if r.banner != nil {
		if err := r.banner.Print(index+1, total, stage.Banner); err != nil {
			return r.fail(ctx, run, stage.Name, exitcode.Failure, err)
		}
	}

	logger.DebugKV(ctx, "Stage started", "stage", stage.Name, "command", stage.CommandLine(), "dir", stage.Dir)

	startedAt := r.now()
	code, err := r.executor.Execute(ctx, stage)

	if err != nil && code == exitcode.Success {
		code = exitcode.Failure
	}

	result := deploy.StageResult{
		Stage:     stage.Name,
		Command:   stage.CommandLine(),
		ExitCode:  code,
		StartedAt: startedAt,
		Duration:  r.now().Sub(startedAt),
	}
	run.Stages = append(run.Stages, result)

	logger.DebugKV(ctx, "Stage finished", "stage", stage.Name, "exit_code", code, "duration", result.Duration)

	if code != exitcode.Success {
		return r.fail(ctx, run, stage.Name, code, err)
	}

	return nil
}

// fail marks the run as failed and builds the stage error.
func (r *Runner) fail(ctx context.Context, run *deploy.Run, stage string, code int, cause error) error {
	run.FailedStage = stage
	run.ExitCode = code

	logger.ErrorKV(ctx, "Deploy aborted", "stage", stage, "exit_code", code, "error", cause)

	return &deploy.StageError{
		Stage: stage,
		Code:  code,
		Err:   cause,
	}
}
