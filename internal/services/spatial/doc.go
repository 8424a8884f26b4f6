// Package spatial stamps 360 playback metadata onto finished renders, either
// by injecting XMP-GSpherical tags with exiftool or by remuxing with
// spherical stream metadata for players that ignore XMP.
package spatial
