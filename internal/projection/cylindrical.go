package projection

import (
	"math"
	"sync"

	"meridian/internal/frame"
)

// CylindricalWarp bends the frame onto a cylinder of the given focal length.
// A focal of zero or less falls back to the image width. Each destination
// pixel nearest-neighbor samples its cylinder coordinate; samples leaving
// the frame stay black.
func (p *Projector) CylindricalWarp(img *frame.Buffer, focal float64) *frame.Buffer {
	if img.Empty() {
		return frame.New(0, 0)
	}
	w, h := img.W, img.H
	if focal <= 0 {
		focal = float64(w)
	}

	table := p.lut(lutKey{w: w, h: h, f: focal}, func() []int32 {
		return buildCylindricalLUT(w, h, focal)
	})

	out := frame.New(w, h)
	var wg sync.WaitGroup
	for _, band := range frame.SplitRows(h, p.workers) {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				row := y * w
				for x := 0; x < w; x++ {
					src := table[row+x]
					if src < 0 {
						continue
					}
					di := (row + x) * 3
					si := int(src) * 3
					out.Pix[di+0] = img.Pix[si+0]
					out.Pix[di+1] = img.Pix[si+1]
					out.Pix[di+2] = img.Pix[si+2]
				}
			}
		}(band[0], band[1])
	}
	wg.Wait()
	return out
}

// buildCylindricalLUT precomputes the source pixel index for every
// destination pixel of one (w, h, focal) geometry.
func buildCylindricalLUT(w, h int, focal float64) []int32 {
	table := make([]int32, w*h)
	halfW := float64(w) / 2
	halfH := float64(h) / 2
	for y := 0; y < h; y++ {
		yn := (float64(y) - halfH) / focal
		for x := 0; x < w; x++ {
			xn := (float64(x) - halfW) / focal
			xc := int(focal*math.Atan(xn) + halfW)
			yc := int(focal*yn/math.Sqrt(1+xn*xn) + halfH)
			if xc >= 0 && xc < w && yc >= 0 && yc < h {
				table[y*w+x] = int32(yc*w + xc)
			} else {
				table[y*w+x] = -1
			}
		}
	}
	return table
}
