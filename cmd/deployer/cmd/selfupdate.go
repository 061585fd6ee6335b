package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/deployer/internal/service/selfupdate"
)

var (
	// updateURL overrides the configured release folder.
	updateURL string
	// updateTarget is the binary to replace instead of the running one.
	updateTarget string
	// forceUpdate reinstalls even when versions match.
	forceUpdate bool

	// selfUpdateCmd replaces the deployer binary with the published release.
	selfUpdateCmd = &cobra.Command{
		Use:   "self-update",
		Short: "Download and apply the latest deployer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &selfupdate.Options{
				ConfigPath:     configPath,
				ConfigExplicit: cmd.Flags().Changed("config"),
				Overrides:      overrides(cmd),
				UpdateURL:      updateURL,
				TargetPath:     updateTarget,
				Force:          forceUpdate,
			}

			return selfupdate.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	selfUpdateCmd.Flags().StringVar(&updateURL, "url", "", "release folder URL (overrides update_url)")
	selfUpdateCmd.Flags().StringVar(&updateTarget, "target", "", "binary to replace (defaults to the running executable)")
	selfUpdateCmd.Flags().BoolVar(&forceUpdate, "force", false, "apply the release even if the version matches")
}
