package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/deployer/internal/domain/deploy"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))
	run, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, run)
}

// TestFileRepository_SaveLoad ensures a failed run survives the round trip with its stages.
func TestFileRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "reports", "last.yaml")
	repo := NewFileRepository(file)

	started := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	want := &deploy.Run{
		ID:        "2f1d",
		StartedAt: started,
		Stages: []deploy.StageResult{
			{Stage: deploy.StageUpgradeInstaller, Command: "pip install --upgrade pip", StartedAt: started, Duration: 2 * time.Second},
			{Stage: deploy.StageInstallDependencies, Command: "pip install -r requirements.txt", ExitCode: 1, StartedAt: started.Add(2 * time.Second), Duration: time.Second},
		},
		FinishedAt:  started.Add(3 * time.Second),
		FailedStage: deploy.StageInstallDependencies,
		ExitCode:    1,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.FailedStage, got.FailedStage)
	require.Equal(t, want.ExitCode, got.ExitCode)
	require.Len(t, got.Stages, 2)
	require.Equal(t, 2*time.Second, got.Stages[0].Duration)
	require.True(t, want.StartedAt.Equal(got.StartedAt))

	// Only the report remains; the temporary file was renamed.
	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestFileRepository_SaveNil rejects an empty run.
func TestFileRepository_SaveNil(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "r.yaml"))
	require.ErrorIs(t, repo.Save(context.Background(), nil), errRunIsNotSet)
}
