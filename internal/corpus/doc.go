// Package corpus implements the ingestion pipeline: filtered tree traversal,
// Markdown document assembly, artifact naming and persistence, and the Cobra
// command orchestrating the stages.
//
// The pipeline is strictly linear and single-threaded for one invocation:
// synchronize, walk, assemble, write, reclaim. Assembly happens fully in
// memory before the single artifact write, so a failed run never leaves a
// partially written document.
package corpus
