package pipeline

import (
	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/domain/deploy"
)

// DefaultStages returns the four deploy stages in execution order.
func DefaultStages(cfg *config.Config) []deploy.Stage {
	return []deploy.Stage{
		{
			Name:    deploy.StageUpgradeInstaller,
			Banner:  "Upgrading package installer",
			Command: cfg.Installer,
			Args:    []string{"install", "--upgrade", cfg.InstallerPackage},
			Dir:     cfg.WorkDir,
		},
		{
			Name:    deploy.StageInstallDependencies,
			Banner:  "Installing dependencies from " + cfg.Manifest,
			Command: cfg.Installer,
			Args:    []string{"install", "-r", cfg.Manifest},
			Dir:     cfg.WorkDir,
		},
		{
			Name:    deploy.StageMigrate,
			Banner:  "Applying database migrations",
			Command: cfg.Python,
			Args:    []string{cfg.ManageScript, "migrate", "--noinput"},
			Dir:     cfg.WorkDir,
		},
		{
			Name:    deploy.StageCollectStatic,
			Banner:  "Collecting static files",
			Command: cfg.Python,
			Args:    []string{cfg.ManageScript, "collectstatic", "--noinput"},
			Dir:     cfg.WorkDir,
		},
	}
}
