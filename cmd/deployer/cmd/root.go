package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/domain/deploy"
	"github.com/oshokin/deployer/internal/exitcode"
	"github.com/oshokin/deployer/internal/logger"
	"github.com/oshokin/deployer/internal/service/pipeline"
	"github.com/oshokin/deployer/internal/version"
)

// logLevelEnv overrides the log level when --log-level is not set.
const logLevelEnv = config.EnvPrefix + "LOG_LEVEL"

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel is the minimum level of diagnostic output on stderr.
	logLevel string
	// workDir, manifest and reportFile override the settings file.
	workDir    string
	manifest   string
	reportFile string

	// rootCmd runs the deploy stages.
	rootCmd = &cobra.Command{
		Use:   "deployer",
		Short: "Upgrade the installer, install dependencies, migrate and collect static files",
		Long: "Runs the four deploy stages in order: upgrade the package installer, install " +
			"dependencies from the manifest, apply database migrations and collect static files. " +
			"The first stage that fails stops the deploy and its exit status becomes the exit status of deployer.",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogger,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return pipeline.Run(ctx, pipelineOptions(cmd))
		},
	}
)

// Execute runs the deployer CLI and exits with the status of the failed stage on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err == nil {
		return
	}

	// Stage failures are already logged by the runner; tool output explains the rest.
	if !errors.Is(err, deploy.ErrStageFailed) {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	os.Exit(exitcode.FromError(err))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVarP(&workDir, "work-dir", "C", "", "project directory the stages run in")
	flags.StringVar(&manifest, "manifest", "", "dependency manifest passed to the installer")
	flags.StringVar(&reportFile, "report", "", "write a YAML run report to this path")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Config(err)
	})

	rootCmd.AddCommand(planCmd, selfUpdateCmd, releaseCmd)
}

// setupLogger applies the requested log level before any command runs.
func setupLogger(cmd *cobra.Command, _ []string) error {
	level := logLevel
	if !cmd.Flags().Changed("log-level") {
		if fromEnv := os.Getenv(logLevelEnv); fromEnv != "" {
			level = fromEnv
		}
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return exitcode.Config(fmt.Errorf("unknown log level %q", level))
	}

	logger.SetLevel(parsed)

	return nil
}

// overrides collects the settings given explicitly on the command line.
func overrides(cmd *cobra.Command) config.Overrides {
	flags := cmd.Flags()

	return config.Overrides{
		Changed: map[string]bool{
			"work-dir": flags.Changed("work-dir"),
			"manifest": flags.Changed("manifest"),
			"report":   flags.Changed("report"),
		},
		WorkDir:    workDir,
		Manifest:   manifest,
		ReportFile: reportFile,
	}
}

func pipelineOptions(cmd *cobra.Command) *pipeline.Options {
	return &pipeline.Options{
		ConfigPath:     configPath,
		ConfigExplicit: cmd.Flags().Changed("config"),
		Overrides:      overrides(cmd),
		Stdout:         cmd.OutOrStdout(),
		Stderr:         cmd.ErrOrStderr(),
	}
}
