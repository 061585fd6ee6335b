// Package selfupdate replaces the deployer binary with a newer release.
//
// A release folder holds a YAML manifest mapping platforms (GOOS/GOARCH) to a
// binary name and its base64 SHA-512 checksum. Update downloads the manifest,
// skips the update when the versions match, otherwise downloads the binary and
// applies it atomically after verifying the checksum. WriteManifest produces
// the manifest for a set of freshly built binaries.
package selfupdate
