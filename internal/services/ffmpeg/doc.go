// Package ffmpeg wraps the ffmpeg command-line tool for stream preparation
// and the final render: lossless concatenation of camera segments, sync
// trimming, single-frame extraction for the stitch preview, and the H.264
// encode. All operations run through a swappable command constructor so
// tests never spawn a real encoder.
package ffmpeg
