package projection_test

import (
	"testing"

	"meridian/internal/frame"
	"meridian/internal/projection"
)

func gradient(w, h int) *frame.Buffer {
	b := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, uint8(x*7%256), uint8(y*13%256), uint8((x+y)%256))
		}
	}
	return b
}

func solid(w, h int, r, g, bl uint8) *frame.Buffer {
	b := frame.New(w, h)
	for i := 0; i < len(b.Pix); i += 3 {
		b.Pix[i] = r
		b.Pix[i+1] = g
		b.Pix[i+2] = bl
	}
	return b
}

func TestCylindricalWarpDimensions(t *testing.T) {
	p := projection.New(nil, projection.WithWorkers(2))
	img := gradient(64, 32)
	out := p.CylindricalWarp(img, 0)
	if out.W != 64 || out.H != 32 {
		t.Fatalf("unexpected output dimensions: %dx%d", out.W, out.H)
	}
	if out == img {
		t.Fatal("warp must allocate a fresh buffer")
	}
}

func TestCylindricalWarpCenterColumnIdentity(t *testing.T) {
	// Power-of-two size keeps the normalized coordinates exact, so the
	// center column maps onto itself.
	p := projection.New(nil)
	img := gradient(64, 64)
	out := p.CylindricalWarp(img, 0)

	x := 32
	for y := 0; y < 64; y++ {
		wr, wg, wb := img.At(x, y)
		gr, gg, gb := out.At(x, y)
		if wr != gr || wg != gg || wb != gb {
			t.Fatalf("center column pixel (%d,%d) changed: got %d,%d,%d want %d,%d,%d", x, y, gr, gg, gb, wr, wg, wb)
		}
	}
}

func TestCylindricalWarpSamplesTowardCenter(t *testing.T) {
	// Dest (0, 32) on a 64x64 frame with focal 64 samples source
	// x = int(64*atan(-0.5) + 32) = 2, same row.
	p := projection.New(nil)
	img := solid(64, 64, 0, 0, 0)
	img.Set(2, 32, 250, 10, 10)

	out := p.CylindricalWarp(img, 64)
	r, g, b := out.At(0, 32)
	if r != 250 || g != 10 || b != 10 {
		t.Fatalf("edge pixel did not sample inward: got %d,%d,%d", r, g, b)
	}
}

func TestCylindricalWarpDeterministic(t *testing.T) {
	p := projection.New(nil, projection.WithWorkers(4))
	img := gradient(48, 30)

	first := p.CylindricalWarp(img, 40)
	second := p.CylindricalWarp(img, 40)
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("pixel %d differs across cached-table runs", i)
		}
	}
}

func TestCylindricalWarpEmptyInput(t *testing.T) {
	p := projection.New(nil)
	out := p.CylindricalWarp(frame.New(0, 0), 100)
	if !out.Empty() {
		t.Fatal("expected empty output for empty input")
	}
}

func TestEquirectangularRemapIdentitySize(t *testing.T) {
	p := projection.New(nil, projection.WithWorkers(3))
	pano := gradient(80, 40)
	out := p.EquirectangularRemap(pano, 80, 40)
	if out.W != 80 || out.H != 40 {
		t.Fatalf("unexpected dimensions: %dx%d", out.W, out.H)
	}
	for i := range pano.Pix {
		if out.Pix[i] != pano.Pix[i] {
			t.Fatalf("same-size remap is not the identity at byte %d", i)
		}
	}
}

func TestEquirectangularRemapSolidUpscale(t *testing.T) {
	p := projection.New(nil)
	pano := solid(40, 20, 12, 200, 99)
	out := p.EquirectangularRemap(pano, 160, 80)
	if out.W != 160 || out.H != 80 {
		t.Fatalf("unexpected dimensions: %dx%d", out.W, out.H)
	}
	for i := 0; i < len(out.Pix); i += 3 {
		if out.Pix[i] != 12 || out.Pix[i+1] != 200 || out.Pix[i+2] != 99 {
			t.Fatalf("solid panorama produced non-solid output at byte %d", i)
		}
	}
}

func TestEquirectangularRemapEmptyPanorama(t *testing.T) {
	p := projection.New(nil)
	out := p.EquirectangularRemap(frame.New(0, 0), 16, 8)
	if out.W != 16 || out.H != 8 {
		t.Fatalf("unexpected dimensions: %dx%d", out.W, out.H)
	}
	for _, b := range out.Pix {
		if b != 0 {
			t.Fatal("empty panorama should remap to black")
		}
	}
}

func TestEquirectangularRemapBadDimensions(t *testing.T) {
	p := projection.New(nil)
	if out := p.EquirectangularRemap(gradient(8, 8), 0, 10); !out.Empty() {
		t.Fatal("expected empty output for zero width")
	}
}
