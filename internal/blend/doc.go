// Package blend joins warped camera frames into a single panorama with a
// linear feather across the seam.
package blend
