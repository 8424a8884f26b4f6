// Package pipeline sequences the fixed stitching stages for one run: load
// calibration, concatenate both camera streams, adjust sync, stitch the
// representative preview frame, encode, and finalize the output with
// spherical metadata.
//
// Exactly one worker goroutine executes the sequence. The caller steers it
// through the run's Controller, whose flags are honored at stage boundaries
// only, and observes it through a one-way event stream. Terminal state for
// every run is recorded in the ledger.
package pipeline
