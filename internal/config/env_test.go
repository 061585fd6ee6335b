package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestApplyEnv verifies DEPLOYER_* overrides and flag precedence.
// Not parallel: t.Setenv mutates the process environment.
func TestApplyEnv(t *testing.T) {
	t.Setenv("DEPLOYER_MANIFEST", "requirements/prod.txt")
	t.Setenv("DEPLOYER_PYTHON", "python3.12")
	t.Setenv("DEPLOYER_TIMEOUT", "45s")
	t.Setenv("DEPLOYER_REPORT_FILE", "from-env.yaml")

	cfg := Default()
	cfg.ReportFile = "from-flag.yaml"

	require.NoError(t, ApplyEnv(cfg, map[string]bool{"report": true}))
	require.Equal(t, "requirements/prod.txt", cfg.Manifest)
	require.Equal(t, "python3.12", cfg.Python)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, "from-flag.yaml", cfg.ReportFile)
	require.Equal(t, DefaultInstaller, cfg.Installer)
}

// TestApplyEnvInvalidDuration ensures malformed durations are rejected.
func TestApplyEnvInvalidDuration(t *testing.T) {
	t.Setenv("DEPLOYER_TIMEOUT", "soon")

	require.Error(t, ApplyEnv(Default(), nil))
}

// TestResolvePrecedence checks flag > environment > file > default.
func TestResolvePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployer.yaml")
	require.NoError(t, Save(path, &Config{Manifest: "file.txt", Python: "python-from-file"}))

	t.Setenv("DEPLOYER_MANIFEST", "env.txt")
	t.Setenv("DEPLOYER_PYTHON", "python-from-env")

	cfg, err := Resolve(path, true, Overrides{
		Changed:  map[string]bool{"manifest": true},
		Manifest: "flag.txt",
	})
	require.NoError(t, err)
	require.Equal(t, "flag.txt", cfg.Manifest)
	require.Equal(t, "python-from-env", cfg.Python)
	require.Equal(t, DefaultInstaller, cfg.Installer)
}
