// Package deploy contains the domain types of a deploy run: stages, their
// results and the run record.
package deploy
