package projection

import (
	"math"

	"meridian/internal/frame"
)

// bilinearSample writes the interpolated RGB triple at (fx, fy) into out.
// Coordinates whose floor falls outside the buffer sample black; interior
// samples clamp their right/bottom neighbor at the edge.
func bilinearSample(b *frame.Buffer, fx, fy float64, out []uint8) {
	x := int(math.Floor(fx))
	y := int(math.Floor(fy))
	tx := fx - float64(x)
	ty := fy - float64(y)
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		out[0], out[1], out[2] = 0, 0, 0
		return
	}
	x1 := x + 1
	y1 := y + 1
	if x1 >= b.W {
		x1 = x
		tx = 0
	}
	if y1 >= b.H {
		y1 = y
		ty = 0
	}

	stride := b.W * 3
	i00 := y*stride + x*3
	i10 := y*stride + x1*3
	i01 := y1*stride + x*3
	i11 := y1*stride + x1*3

	w00 := (1 - tx) * (1 - ty)
	w10 := tx * (1 - ty)
	w01 := (1 - tx) * ty
	w11 := tx * ty

	for c := 0; c < 3; c++ {
		val := w00*float64(b.Pix[i00+c]) + w10*float64(b.Pix[i10+c]) + w01*float64(b.Pix[i01+c]) + w11*float64(b.Pix[i11+c])
		if val < 0 {
			val = 0
		} else if val > 255 {
			val = 255
		}
		out[c] = uint8(val + 0.5)
	}
}
