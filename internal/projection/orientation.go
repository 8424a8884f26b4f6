package projection

import (
	"math"
	"runtime"
	"sync"

	"meridian/internal/frame"
)

// Orientation is a viewer adjustment in degrees. Yaw wraps, pitch and roll
// clamp; values are normalized on use, never rejected.
type Orientation struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Normalized wraps yaw into [0,360) and clamps pitch to [-90,90] and roll
// to [-180,180].
func (o Orientation) Normalized() Orientation {
	yaw := math.Mod(o.Yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	return Orientation{
		Yaw:   yaw,
		Pitch: clampF(o.Pitch, -90, 90),
		Roll:  clampF(o.Roll, -180, 180),
	}
}

// IsZero reports whether the normalized orientation is the identity.
func (o Orientation) IsZero() bool {
	n := o.Normalized()
	return n.Yaw == 0 && n.Pitch == 0 && n.Roll == 0
}

// ApplyOrientation reorients the frame: roll rotates about the image
// center (edges that leave the canvas stay black), yaw and pitch shift the
// canvas circularly by angle/360·w and angle/180·h pixels. The zero
// orientation returns the input untouched.
func ApplyOrientation(img *frame.Buffer, o Orientation) *frame.Buffer {
	o = o.Normalized()
	if o.IsZero() || img.Empty() {
		return img
	}

	out := img
	if o.Roll != 0 {
		out = rotate(out, o.Roll)
	}
	if shift := int(math.Round(o.Yaw / 360 * float64(img.W))); shift%img.W != 0 {
		out = shiftHorizontal(out, shift%img.W)
	}
	if shift := int(math.Round(o.Pitch / 180 * float64(img.H))); shift%img.H != 0 {
		out = shiftVertical(out, shift%img.H)
	}
	return out
}

// rotate spins the frame by deg counter-clockwise about its center with
// bilinear resampling.
func rotate(img *frame.Buffer, deg float64) *frame.Buffer {
	w, h := img.W, img.H
	out := frame.New(w, h)
	theta := deg * math.Pi / 180
	sin, cos := math.Sincos(theta)
	cx := float64(w / 2)
	cy := float64(h / 2)

	var wg sync.WaitGroup
	for _, band := range frame.SplitRows(h, runtime.NumCPU()) {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			var px [3]uint8
			for y := y0; y < y1; y++ {
				dy := float64(y) - cy
				for x := 0; x < w; x++ {
					dx := float64(x) - cx
					srcX := cos*dx - sin*dy + cx
					srcY := sin*dx + cos*dy + cy
					bilinearSample(img, srcX, srcY, px[:])
					i := (y*w + x) * 3
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

// shiftHorizontal moves content right by shift columns, wrapping around.
func shiftHorizontal(img *frame.Buffer, shift int) *frame.Buffer {
	w, h := img.W, img.H
	shift = ((shift % w) + w) % w
	out := frame.New(w, h)
	stride := w * 3
	cut := (w - shift) * 3
	for y := 0; y < h; y++ {
		src := img.Pix[y*stride : (y+1)*stride]
		dst := out.Pix[y*stride : (y+1)*stride]
		copy(dst[shift*3:], src[:cut])
		copy(dst[:shift*3], src[cut:])
	}
	return out
}

// shiftVertical moves content down by shift rows, wrapping around.
func shiftVertical(img *frame.Buffer, shift int) *frame.Buffer {
	w, h := img.W, img.H
	shift = ((shift % h) + h) % h
	out := frame.New(w, h)
	stride := w * 3
	for y := 0; y < h; y++ {
		dst := (y + shift) % h
		copy(out.Pix[dst*stride:(dst+1)*stride], img.Pix[y*stride:(y+1)*stride])
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
