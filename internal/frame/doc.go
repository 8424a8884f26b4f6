// Package frame provides the RGB raster type shared by the stitching
// transforms, plus PNG/JPEG codec helpers and preview scaling.
package frame
