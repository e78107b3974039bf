// Package workspace derives the on-disk layout for pipeline invocations and
// reclaims working copies after successful runs.
package workspace
