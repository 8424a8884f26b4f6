package projection

import (
	"math"
	"sync"

	"meridian/internal/frame"
)

// EquirectangularRemap spreads the stitched panorama across a full
// longitude/latitude grid of the requested output size, sampling the
// panorama bilinearly.
func (p *Projector) EquirectangularRemap(pano *frame.Buffer, outW, outH int) *frame.Buffer {
	if outW <= 0 || outH <= 0 {
		return frame.New(0, 0)
	}
	out := frame.New(outW, outH)
	if pano.Empty() {
		return out
	}

	panoW := float64(pano.W)
	panoH := float64(pano.H)
	fw := float64(outW)
	fh := float64(outH)

	var wg sync.WaitGroup
	for _, band := range frame.SplitRows(outH, p.workers) {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			var px [3]uint8
			for y := y0; y < y1; y++ {
				lat := (float64(y)/fh)*math.Pi - math.Pi/2
				srcY := (lat + math.Pi/2) / math.Pi * panoH
				for x := 0; x < outW; x++ {
					lon := (float64(x)/fw)*2*math.Pi - math.Pi
					srcX := (lon + math.Pi) / (2 * math.Pi) * panoW
					bilinearSample(pano, srcX, srcY, px[:])
					i := (y*outW + x) * 3
					out.Pix[i+0] = px[0]
					out.Pix[i+1] = px[1]
					out.Pix[i+2] = px[2]
				}
			}
		}(band[0], band[1])
	}
	wg.Wait()
	return out
}
