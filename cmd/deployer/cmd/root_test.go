package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deployer/internal/exitcode"
)

// TestParseBinaries accepts os/arch=path pairs and rejects anything else.
func TestParseBinaries(t *testing.T) {
	t.Parallel()

	binaries, err := parseBinaries([]string{"linux/amd64=dist/deployer-linux-amd64", "darwin/arm64=dist/deployer-darwin"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"linux/amd64":  "dist/deployer-linux-amd64",
		"darwin/arm64": "dist/deployer-darwin",
	}, binaries)

	for _, bad := range []string{"linux", "linux/amd64", "=path", "linux=path", "linux/amd64="} {
		_, err = parseBinaries([]string{bad})
		require.ErrorIs(t, err, errBadBinaryArg, bad)
	}
}

// TestPlanCommand drives the cobra tree end to end without running any stage.
// Not parallel: the command tree and its flag variables are package globals.
func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"plan",
		"--config", filepath.Join(dir, "deployer.yaml"),
		"--work-dir", dir,
		"--manifest", "requirements/prod.txt",
	})

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	// An explicit settings file that is missing is a configuration error.
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Equal(t, exitcode.ConfigError, exitcode.FromError(err))

	rootCmd.SetArgs([]string{"plan", "--work-dir", dir, "--manifest", "requirements/prod.txt"})
	configPath = filepath.Join(dir, "absent.yaml")

	// Flag state persists between executions of the same tree; reset the one we care about.
	require.NoError(t, rootCmd.PersistentFlags().Lookup("config").Value.Set(configPath))
	rootCmd.PersistentFlags().Lookup("config").Changed = false

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "pip install -r requirements/prod.txt")
	require.Contains(t, out.String(), "collect-static")
}

// TestUnknownLogLevel is rejected as a configuration error.
func TestUnknownLogLevel(t *testing.T) {
	rootCmd.SetArgs([]string{"plan", "--log-level", "chatty"})

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logLevel = "info"
		rootCmd.PersistentFlags().Lookup("log-level").Changed = false
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.Equal(t, exitcode.ConfigError, exitcode.FromError(err))
}
