package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/domain/deploy"
)

// TestDefaultStages verifies order and command lines of the conventional deploy.
func TestDefaultStages(t *testing.T) {
	t.Parallel()

	stages := DefaultStages(config.Default())
	require.Len(t, stages, 4)

	want := []struct {
		name string
		line string
	}{
		{deploy.StageUpgradeInstaller, "pip install --upgrade pip"},
		{deploy.StageInstallDependencies, "pip install -r requirements.txt"},
		{deploy.StageMigrate, "python manage.py migrate --noinput"},
		{deploy.StageCollectStatic, "python manage.py collectstatic --noinput"},
	}

	for i, w := range want {
		require.Equal(t, w.name, stages[i].Name)
		require.Equal(t, w.line, stages[i].CommandLine())
		require.Equal(t, ".", stages[i].Dir)
		require.NotEmpty(t, stages[i].Banner)
	}
}

// TestDefaultStagesCustomConfig ensures configured tools and paths are used.
func TestDefaultStagesCustomConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		WorkDir:      t.TempDir(),
		Installer:    "pip3",
		Manifest:     "requirements/prod.txt",
		Python:       "python3",
		ManageScript: "src/manage.py",
	}
	require.NoError(t, config.Validate(cfg))

	stages := DefaultStages(cfg)
	require.Equal(t, "pip3 install -r requirements/prod.txt", stages[1].CommandLine())
	require.Equal(t, "python3 src/manage.py collectstatic --noinput", stages[3].CommandLine())
	require.Equal(t, cfg.WorkDir, stages[2].Dir)
}
