package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/oshokin/deployer/internal/banner"
	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/exitcode"
	"github.com/oshokin/deployer/internal/logger"
	"github.com/oshokin/deployer/internal/repository/report"
	"github.com/oshokin/deployer/internal/runlock"
)

// errWorkDirMissing is reported when the work directory is not a directory.
var errWorkDirMissing = errors.New("not a directory")

// Options are inputs accepted by the pipeline entry points.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ConfigExplicit is set when the user named the settings file; a missing
	// explicit file is an error instead of falling back to defaults.
	ConfigExplicit bool
	// Overrides are command-line values taking precedence over file and environment.
	Overrides config.Overrides
	// Stdout receives banners and tool output. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives tool error output. Defaults to os.Stderr.
	Stderr io.Writer
}

// Run loads settings, takes the deploy lock and executes the stages.
// The returned error carries the exit status for the process (see exitcode.FromError).
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "deployer")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(ctx, cfg.ResolvePath(cfg.LockFile))
	if err != nil {
		return fmt.Errorf("acquire deploy lock: %w", err)
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Unable to release deploy lock", "error", releaseErr)
		}
	}()

	stdout, stderr := opts.streams()

	runner := NewRunner(
		NewCommandExecutor(WithOutput(stdout, stderr)),
		WithBanner(banner.New(stdout)),
	)

	run, runErr := runner.Run(ctx, DefaultStages(cfg))

	if cfg.ReportFile != "" && run != nil {
		reportPath := cfg.ResolvePath(cfg.ReportFile)

		if err = report.NewFileRepository(reportPath).Save(ctx, run); err != nil {
			// The stage error decides the exit status when both fail.
			if runErr != nil {
				logger.WarnKV(ctx, "Unable to save run report", "path", reportPath, "error", err)
			} else {
				return fmt.Errorf("save run report: %w", err)
			}
		} else {
			logger.DebugKV(ctx, "Run report saved", "path", reportPath)
		}
	}

	return runErr
}

// Plan prints the stages that Run would execute without running them.
func Plan(_ context.Context, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	stdout, _ := opts.streams()
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)

	for i, stage := range DefaultStages(cfg) {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, stage.Name, stage.CommandLine())
	}

	if err = tw.Flush(); err != nil {
		return fmt.Errorf("print plan: %w", err)
	}

	return nil
}

// loadConfig resolves settings and marks failures as configuration errors.
func loadConfig(opts *Options) (*config.Config, error) {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Resolve(opts.ConfigPath, opts.ConfigExplicit, opts.Overrides)
	if err != nil {
		return nil, exitcode.Config(fmt.Errorf("load settings: %w", err))
	}

	if info, statErr := os.Stat(cfg.WorkDir); statErr != nil || !info.IsDir() {
		if statErr == nil {
			statErr = errWorkDirMissing
		}

		return nil, exitcode.Config(fmt.Errorf("work directory %s: %w", cfg.WorkDir, statErr))
	}

	return cfg, nil
}

func (o *Options) streams() (io.Writer, io.Writer) {
	var stdout, stderr io.Writer = os.Stdout, os.Stderr

	if o == nil {
		return stdout, stderr
	}

	if o.Stdout != nil {
		stdout = o.Stdout
	}

	if o.Stderr != nil {
		stderr = o.Stderr
	}

	return stdout, stderr
}
