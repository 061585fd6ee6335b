package config

import (
	"fmt"
	"os"
	"time"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "DEPLOYER_"

// ApplyEnv applies overrides from DEPLOYER_* environment variables.
// Keys present in changed belong to flags set explicitly on the command line
// and are left alone so flags keep precedence over the environment.
func ApplyEnv(cfg *Config, changed map[string]bool) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	s := envSetter{changed: changed}

	s.setString("work-dir", "WORK_DIR", &cfg.WorkDir)
	s.setString("installer", "INSTALLER", &cfg.Installer)
	s.setString("installer-package", "INSTALLER_PACKAGE", &cfg.InstallerPackage)
	s.setString("manifest", "MANIFEST", &cfg.Manifest)
	s.setString("python", "PYTHON", &cfg.Python)
	s.setString("manage-script", "MANAGE_SCRIPT", &cfg.ManageScript)
	s.setString("lock-file", "LOCK_FILE", &cfg.LockFile)
	s.setString("report", "REPORT_FILE", &cfg.ReportFile)
	s.setString("update-url", "UPDATE_URL", &cfg.UpdateURL)

	if err := s.setDuration("timeout", "TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}

	return Validate(cfg)
}

type envSetter struct {
	changed map[string]bool
}

func (s envSetter) lookup(flag, key string) (string, bool) {
	if s.changed[flag] {
		return "", false
	}

	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return "", false
	}

	return value, true
}

func (s envSetter) setString(flag, key string, dst *string) {
	if value, ok := s.lookup(flag, key); ok {
		*dst = value
	}
}

func (s envSetter) setDuration(flag, key string, dst *time.Duration) error {
	value, ok := s.lookup(flag, key)
	if !ok {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}

	*dst = d

	return nil
}
