package deploy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCommandLine checks quoting of arguments with whitespace.
func TestCommandLine(t *testing.T) {
	t.Parallel()

	stage := Stage{Command: "pip", Args: []string{"install", "-r", "my reqs.txt"}}
	require.Equal(t, `pip install -r "my reqs.txt"`, stage.CommandLine())

	stage = Stage{Command: "python", Args: []string{"manage.py", "migrate", "--noinput"}}
	require.Equal(t, "python manage.py migrate --noinput", stage.CommandLine())
}

// TestStageError verifies matching, unwrapping and the carried exit code.
func TestStageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 3")
	err := fmt.Errorf("deploy: %w", &StageError{Stage: StageMigrate, Code: 3, Err: cause})

	require.ErrorIs(t, err, ErrStageFailed)
	require.ErrorIs(t, err, cause)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, 3, stageErr.ExitCode())
	require.Contains(t, err.Error(), StageMigrate)
}

// TestRunClone ensures the copy does not share the stage slice.
func TestRunClone(t *testing.T) {
	t.Parallel()

	run := &Run{ID: "r1", Stages: []StageResult{{Stage: StageMigrate}}}
	cloned := run.Clone()
	cloned.Stages[0].ExitCode = 9

	require.Zero(t, run.Stages[0].ExitCode)
	require.True(t, run.Succeeded())
	require.Nil(t, (*Run)(nil).Clone())
}
