// Package config defines the deployer settings and provides helpers to load,
// validate and save them in YAML format.
//
// Every field has a default that reproduces the conventional deploy commands,
// so the settings file is optional. DEPLOYER_* environment variables override
// the file; explicitly set command-line flags override both.
package config
