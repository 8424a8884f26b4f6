package frame

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Scale resamples the buffer to w×h with approximate bilinear filtering.
// Used for preview thumbnails, where speed beats fidelity.
func Scale(b *Buffer, w, h int) *Buffer {
	if w <= 0 || h <= 0 {
		return New(0, 0)
	}
	if w == b.W && h == b.H {
		return b.Clone()
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), b.Image(), image.Rect(0, 0, b.W, b.H), draw.Src, nil)
	return FromImage(dst)
}
