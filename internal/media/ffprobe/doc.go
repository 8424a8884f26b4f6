// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no meridian-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, format name)
//
// Primary entry point:
//   - CLI.Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result expose the fields stitching cares about: video
// dimensions, codec, duration, and the frame rate parsed from ffprobe's
// rational r_frame_rate form. A container without a video stream is a
// normal outcome (VideoStream returns nil), not an inspection failure.
package ffprobe
