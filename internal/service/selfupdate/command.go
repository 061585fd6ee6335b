package selfupdate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/deployer/internal/config"
	"github.com/oshokin/deployer/internal/exitcode"
	"github.com/oshokin/deployer/internal/logger"
	"github.com/oshokin/deployer/internal/version"
)

var (
	errUpdateURLNotSet  = errors.New("update URL is not configured")
	errBadHTTPStatus    = errors.New("unexpected http status")
	errNoPlatformBinary = errors.New("release has no binary for platform")
	errEmptyManifest    = errors.New("release manifest is empty")
	errBinaryTooLarge   = errors.New("release binary exceeds size limit")
)

// maxBinarySize bounds the download held in memory before applying it.
const maxBinarySize = 512 << 20

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ConfigExplicit is set when the user named the settings file.
	ConfigExplicit bool
	// Overrides are command-line values taking precedence over file and environment.
	Overrides config.Overrides
	// UpdateURL replaces the configured release folder when set.
	UpdateURL string
	// TargetPath is the binary to replace. Defaults to the running executable.
	TargetPath string
	// Force applies the release even when the versions match.
	Force bool
	// CurrentVersion defaults to the version compiled into the binary.
	CurrentVersion string
	// Platform defaults to the GOOS/GOARCH of the running binary.
	Platform string
}

// updater holds the state of a single self-update.
// It is unexported: call Run(ctx, Options).
type updater struct {
	client     *http.Client
	folder     *url.URL
	targetPath string
	current    string
	platform   string
	force      bool
}

// Run executes the self-update and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "self-update")

	up, err := newUpdater(opts)
	if err != nil {
		return err
	}

	if err = up.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Self-update failed", "error", err)
		return err
	}

	return nil
}

// newUpdater resolves settings and defaults for a run.
func newUpdater(opts *Options) (*updater, error) {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Resolve(opts.ConfigPath, opts.ConfigExplicit, opts.Overrides)
	if err != nil {
		return nil, exitcode.Config(fmt.Errorf("load settings: %w", err))
	}

	rawURL := cfg.UpdateURL
	if opts.UpdateURL != "" {
		rawURL = opts.UpdateURL
	}

	if rawURL == "" {
		return nil, exitcode.Config(errUpdateURLNotSet)
	}

	folder, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, exitcode.Config(fmt.Errorf("invalid update URL: %w", err))
	}

	up := &updater{
		client:     &http.Client{Timeout: cfg.Timeout},
		folder:     folder,
		targetPath: opts.TargetPath,
		current:    opts.CurrentVersion,
		platform:   opts.Platform,
		force:      opts.Force,
	}

	if up.current == "" {
		up.current = version.Short()
	}

	if up.platform == "" {
		up.platform = version.Platform()
	}

	if up.targetPath == "" {
		if up.targetPath, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate running executable: %w", err)
		}
	}

	return up, nil
}

// run fetches the manifest, decides whether to update and applies the binary.
func (u *updater) run(ctx context.Context) error {
	logger.InfoKV(ctx, "Downloading release manifest", "url", u.fileURL(ManifestFilename))

	manifest, err := u.fetchManifest(ctx)
	if err != nil {
		return fmt.Errorf("download release manifest: %w", err)
	}

	if manifest.Version == u.current && !u.force {
		logger.InfoKV(ctx, "Deployer is up to date", "version", u.current)
		return nil
	}

	binary, ok := manifest.Binaries[u.platform]
	if !ok {
		return fmt.Errorf("%s: %w", u.platform, errNoPlatformBinary)
	}

	checksum, err := binary.DecodedChecksum()
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Downloading release binary", "file", binary.File, "version", manifest.Version)

	data, err := u.fetch(ctx, binary.File, maxBinarySize)
	if err != nil {
		return fmt.Errorf("download release binary: %w", err)
	}

	if err = u.apply(data, checksum); err != nil {
		return fmt.Errorf("apply release binary: %w", err)
	}

	logger.InfoKV(ctx, "Deployer updated", "from", u.current, "to", manifest.Version, "path", u.targetPath)

	return nil
}

// fetchManifest downloads and parses the release manifest.
func (u *updater) fetchManifest(ctx context.Context) (*Manifest, error) {
	data, err := u.fetch(ctx, ManifestFilename, maxBinarySize)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err = yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if manifest.Version == "" || len(manifest.Binaries) == 0 {
		return nil, errEmptyManifest
	}

	return &manifest, nil
}

// fetch downloads a file from the release folder.
func (u *updater) fetch(ctx context.Context, fileName string, limit int64) ([]byte, error) {
	finalURL := u.fileURL(fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", finalURL, errBinaryTooLarge)
	}

	return data, nil
}

// fileURL joins the release folder with a file name.
func (u *updater) fileURL(fileName string) string {
	fileURL := *u.folder
	// Use path.Join to normalize duplicate slashes when composing the URL path.
	fileURL.Path = path.Join(fileURL.Path, fileName)

	return fileURL.String()
}

// apply replaces the target binary after checksum verification.
func (u *updater) apply(data, checksum []byte) error {
	if _, err := os.Stat(u.targetPath); errors.Is(err, os.ErrNotExist) {
		created, createErr := os.Create(u.targetPath)
		if createErr != nil {
			return createErr
		}

		_ = created.Close()
	}

	options := goupdate.Options{
		TargetPath: u.targetPath,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	return goupdate.Apply(bytes.NewReader(data), options)
}
