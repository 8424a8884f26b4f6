// Package archive produces AV1 archival masters of finished renders through
// the Drapto encoding library. Archival is strictly best-effort: the
// pipeline logs a failed archive and completes the run, since the delivered
// render already exists by the time archiving starts.
package archive
