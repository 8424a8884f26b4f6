package projection

import (
	"sync"

	"meridian/internal/calibration"
	"meridian/internal/frame"
)

// Undistort removes Brown-Conrady lens distortion for one camera side.
// Without calibration the input is returned unchanged: absent calibration
// is a passthrough, not an error.
func (p *Projector) Undistort(img *frame.Buffer, cam calibration.Camera) *frame.Buffer {
	if p.calib == nil || img.Empty() {
		return img
	}
	inv := p.inverseFor(cam)
	if inv == nil {
		return img
	}
	k, dist := p.calib.Side(cam)

	i00, i01, i02 := inv.At(0, 0), inv.At(0, 1), inv.At(0, 2)
	i10, i11, i12 := inv.At(1, 0), inv.At(1, 1), inv.At(1, 2)
	i20, i21, i22 := inv.At(2, 0), inv.At(2, 1), inv.At(2, 2)
	k00, k01, k02 := k.At(0, 0), k.At(0, 1), k.At(0, 2)
	k10, k11, k12 := k.At(1, 0), k.At(1, 1), k.At(1, 2)

	w, h := img.W, img.H
	out := frame.New(w, h)

	var wg sync.WaitGroup
	for _, band := range frame.SplitRows(h, p.workers) {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			var px [3]uint8
			for v := y0; v < y1; v++ {
				fv := float64(v)
				for u := 0; u < w; u++ {
					fu := float64(u)

					// Normalize through K⁻¹.
					hx := i00*fu + i01*fv + i02
					hy := i10*fu + i11*fv + i12
					hw := i20*fu + i21*fv + i22
					if hw == 0 {
						continue
					}
					xn := hx / hw
					yn := hy / hw

					// Forward distortion model at the normalized point.
					r2 := xn*xn + yn*yn
					radial := 1 + r2*(dist.K1+r2*(dist.K2+r2*dist.K3))
					xd := xn*radial + 2*dist.P1*xn*yn + dist.P2*(r2+2*xn*xn)
					yd := yn*radial + dist.P1*(r2+2*yn*yn) + 2*dist.P2*xn*yn

					// Re-project through K and sample.
					srcX := k00*xd + k01*yd + k02
					srcY := k10*xd + k11*yd + k12
					bilinearSample(img, srcX, srcY, px[:])
					i := (v*w + u) * 3
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
