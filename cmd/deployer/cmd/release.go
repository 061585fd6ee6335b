package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/deployer/internal/exitcode"
	"github.com/oshokin/deployer/internal/logger"
	"github.com/oshokin/deployer/internal/service/selfupdate"
	"github.com/oshokin/deployer/internal/version"
)

// errBadBinaryArg is returned for arguments not shaped like os/arch=path.
var errBadBinaryArg = errors.New("expected os/arch=path")

var (
	// releaseDir is where the manifest is written.
	releaseDir string
	// releaseVersion is the version recorded in the manifest.
	releaseVersion string

	// releaseCmd writes the manifest consumed by self-update.
	releaseCmd = &cobra.Command{
		Use:   "release os/arch=path [os/arch=path...]",
		Short: "Write the release manifest for self-update",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binaries, err := parseBinaries(args)
			if err != nil {
				return exitcode.Config(err)
			}

			manifest, err := selfupdate.WriteManifest(releaseDir, releaseVersion, binaries)
			if err != nil {
				return err
			}

			platforms := make([]string, 0, len(manifest.Binaries))
			for platform := range manifest.Binaries {
				platforms = append(platforms, platform)
			}

			sort.Strings(platforms)

			logger.InfoKV(cmd.Context(), "Release manifest written",
				"dir", releaseDir, "version", manifest.Version, "platforms", platforms)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	releaseCmd.Flags().StringVar(&releaseDir, "dir", ".", "directory the manifest is written to")
	releaseCmd.Flags().StringVar(&releaseVersion, "version", version.Short(), "release version")
}

// parseBinaries turns os/arch=path arguments into a platform map.
func parseBinaries(args []string) (map[string]string, error) {
	binaries := make(map[string]string, len(args))

	for _, arg := range args {
		platform, path, ok := strings.Cut(arg, "=")
		if !ok || platform == "" || path == "" || !strings.Contains(platform, "/") {
			return nil, fmt.Errorf("%q: %w", arg, errBadBinaryArg)
		}

		binaries[platform] = path
	}

	return binaries, nil
}
