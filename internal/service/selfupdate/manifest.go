package selfupdate

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename is the release manifest name inside the update folder.
	ManifestFilename = "deployer-release.yaml"

	// DefaultFileMode is applied to written binaries and manifests.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate release file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	errHashUnavailable = errors.New("hash function unavailable")
	errNoBinaries      = errors.New("no binaries to describe")
)

// Binary describes the release artifact for one platform.
type Binary struct {
	// File is the artifact name relative to the update folder.
	File string `yaml:"file"`
	// Checksum is the base64-encoded SHA-512 of the file.
	Checksum string `yaml:"checksum"`
}

// Manifest contains metadata about a published release.
type Manifest struct {
	// Version is the semantic version of this release.
	Version string `yaml:"version"`
	// Binaries maps GOOS/GOARCH pairs to their artifacts.
	Binaries map[string]Binary `yaml:"binaries"`
}

// DecodedChecksum returns the raw checksum bytes of the binary.
func (b Binary) DecodedChecksum() ([]byte, error) {
	checksum, err := base64.StdEncoding.DecodeString(b.Checksum)
	if err != nil {
		return nil, fmt.Errorf("decode checksum of %s: %w", b.File, err)
	}

	return checksum, nil
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return checksum(contents)
}

// WriteManifest hashes the binaries (platform -> local path) and writes the
// manifest into dir. Binary names in the manifest are the base names of the paths.
func WriteManifest(dir, releaseVersion string, binaries map[string]string) (*Manifest, error) {
	if len(binaries) == 0 {
		return nil, errNoBinaries
	}

	manifest := &Manifest{
		Version:  releaseVersion,
		Binaries: make(map[string]Binary, len(binaries)),
	}

	for platform, path := range binaries {
		sum, err := GetFileChecksum(path)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", path, err)
		}

		manifest.Binaries[platform] = Binary{
			File:     filepath.Base(path),
			Checksum: base64.StdEncoding.EncodeToString(sum),
		}
	}

	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	target := filepath.Join(dir, ManifestFilename)
	if err = os.WriteFile(target, contents, DefaultFileMode); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	return manifest, nil
}

func checksum(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
