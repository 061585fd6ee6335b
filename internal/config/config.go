package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the commands and paths used by the deployer.
type Config struct {
	// WorkDir is the project directory every stage runs in.
	WorkDir string `yaml:"work_dir"`
	// Installer is the package installer executable (pip).
	Installer string `yaml:"installer"`
	// InstallerPackage is the package name the installer upgrades itself to.
	InstallerPackage string `yaml:"installer_package"`
	// Manifest is the pinned dependency file passed to the installer.
	Manifest string `yaml:"manifest"`
	// Python is the interpreter used to run the management script.
	Python string `yaml:"python"`
	// ManageScript is the framework management entry point.
	ManageScript string `yaml:"manage_script"`
	// LockFile guards the work directory against concurrent deploys.
	LockFile string `yaml:"lock_file"`
	// ReportFile is where the run report is written. Empty disables the report.
	ReportFile string `yaml:"report_file"`
	// UpdateURL is the folder hosting deployer releases for self-update.
	UpdateURL string `yaml:"update_url"`
	// Timeout bounds network operations performed by self-update.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for deployer settings.
	DefaultConfigFilename = "deployer.yaml"

	// DefaultInstaller is the package installer invoked by the first two stages.
	DefaultInstaller = "pip"

	// DefaultInstallerPackage is what the installer upgrade stage installs.
	DefaultInstallerPackage = "pip"

	// DefaultManifest is the conventional dependency manifest name.
	DefaultManifest = "requirements.txt"

	// DefaultPython is the interpreter running the management script.
	DefaultPython = "python"

	// DefaultManageScript is the conventional framework entry point.
	DefaultManageScript = "manage.py"

	// DefaultLockFilename is the lock file created in the work directory.
	DefaultLockFilename = ".deployer.lock"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errWorkDirNotDirectory is returned when the work directory is a regular file.
	errWorkDirNotDirectory = errors.New("work directory is not a directory")
)

// Default returns settings that reproduce the conventional deploy commands.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist and the caller did not ask for it explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return nil, err
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for formatting errors.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	setDefault(&settings.WorkDir, ".")
	setDefault(&settings.Installer, DefaultInstaller)
	setDefault(&settings.InstallerPackage, DefaultInstallerPackage)
	setDefault(&settings.Manifest, DefaultManifest)
	setDefault(&settings.Python, DefaultPython)
	setDefault(&settings.ManageScript, DefaultManageScript)
	setDefault(&settings.LockFile, DefaultLockFilename)

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	// A missing work directory is reported when the deploy starts.
	if info, err := os.Stat(settings.WorkDir); err == nil && !info.IsDir() {
		return fmt.Errorf("%s: %w", settings.WorkDir, errWorkDirNotDirectory)
	}

	if settings.UpdateURL == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(settings.UpdateURL); err != nil {
		return fmt.Errorf("invalid update URL: %w", err)
	}

	return nil
}

// ResolvePath joins a relative path with the work directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.WorkDir, path)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
