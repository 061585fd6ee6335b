// Package report persists the record of the last deploy run.
//
// The FileRepository stores the run as YAML and replaces the file atomically,
// so readers never observe a half-written report.
package report
