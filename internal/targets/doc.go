// Package targets loads and resolves the named ingestion target catalog.
//
// A catalog maps target names to repository URLs and filter rules; the CLI
// resolves exactly one target per invocation before the pipeline runs.
package targets
