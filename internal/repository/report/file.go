package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/domain/deploy"
)

// Repository defines persistence operations for run reports.
type Repository interface {
	Load(ctx context.Context) (*deploy.Run, error)
	Save(ctx context.Context, run *deploy.Run) error
}

// FileRepository persists the run report to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the report.
	path string
	// mu serialises access within the process.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no report has been written yet.
	ErrNotFound = errors.New("report not found")
	// errRunIsNotSet is returned when saving a nil run.
	errRunIsNotSet = errors.New("run is not set")
)

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*deploy.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report: %w", err)
	}

	var run deploy.Run
	if err = yaml.Unmarshal(contents, &run); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &run, nil
}

// Save writes the report, replacing any previous one.
func (r *FileRepository) Save(_ context.Context, run *deploy.Run) error {
	if run == nil {
		return errRunIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = atomicWrite(r.path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// atomicWrite writes data to a temporary file next to path and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempPath := tempFile.Name()

	// Removing a renamed temp file fails harmlessly.
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err = tempFile.Write(data); err != nil {
		_ = tempFile.Close()

		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tempFile.Sync(); err != nil {
		_ = tempFile.Close()

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Chmod(tempPath, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}

	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	return nil
}
