// Package tasks orchestrates the sweep: resolve the target playlist, move
// the restricted tracks into it, and clear their liked flags.
//
// The engine owns sequencing and aggregation only; pacing and retry live in
// the mutator. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks
