// Package services defines shared utilities consumed by the pipeline stage
// handlers and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run outcomes (fatal vs warn-and-continue).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
