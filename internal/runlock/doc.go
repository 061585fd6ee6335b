// Package runlock keeps two deploys from running in the same work directory.
//
// The lock is an advisory file lock; when it is already held the error names
// the other deployer processes found in the process table.
package runlock
