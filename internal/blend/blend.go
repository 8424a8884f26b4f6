package blend

import (
	"meridian/internal/frame"
	"meridian/internal/services"
)

// Feather joins two warped frames along a vertical seam. The output is
// exactly w1+w2-featherWidth wide and max(h1,h2) tall: the seam band holds
// featherWidth columns where alpha ramps linearly from left to right, and
// the right frame continues from its column featherWidth onward. A zero
// feather degenerates to side-by-side placement.
func Feather(left, right *frame.Buffer, featherWidth int) (*frame.Buffer, error) {
	if left.Empty() || right.Empty() {
		return nil, services.Wrap(services.ErrStitch, "blend", "feather", "empty input frame", nil)
	}

	w1, h1 := left.W, left.H
	w2, h2 := right.W, right.H

	f := featherWidth
	if f < 0 {
		f = 0
	}
	if narrow := min(w1, w2); f > narrow {
		f = narrow
	}

	outW := w1 + w2 - f
	outH := max(h1, h2)
	out := frame.New(outW, outH)

	// Left frame, columns [0, w1).
	for y := 0; y < h1; y++ {
		copy(out.Pix[y*outW*3:y*outW*3+w1*3], left.Pix[y*w1*3:(y+1)*w1*3])
	}

	// Right frame from column f onward, columns [w1, outW).
	tail := (w2 - f) * 3
	for y := 0; y < h2; y++ {
		copy(out.Pix[(y*outW+w1)*3:(y*outW+w1)*3+tail], right.Pix[(y*w2+f)*3:(y+1)*w2*3])
	}

	// Seam band, columns [w1-f, w1): blend left against the right frame's
	// first f columns.
	seamH := min(h1, h2)
	start := w1 - f
	for y := 0; y < seamH; y++ {
		for col := 0; col < f; col++ {
			alpha := float64(col) / float64(f)
			li := (y*w1 + start + col) * 3
			ri := (y*w2 + col) * 3
			oi := (y*outW + start + col) * 3
			for c := 0; c < 3; c++ {
				v := (1-alpha)*float64(left.Pix[li+c]) + alpha*float64(right.Pix[ri+c])
				if v > 255 {
					v = 255
				}
				out.Pix[oi+c] = uint8(v + 0.5)
			}
		}
	}

	return out, nil
}
