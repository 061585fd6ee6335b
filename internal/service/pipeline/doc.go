// Package pipeline runs the deploy stages in fixed order and stops at the
// first stage that exits non-zero.
//
// The stages are: upgrade the package installer, install dependencies from
// the manifest, apply database migrations and collect static files. The
// failing stage's exit status becomes the process exit status; stages after
// it never start. Nothing is retried or rolled back.
package pipeline
