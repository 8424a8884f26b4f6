package frame

import (
	"image"
	"image/color"
	"image/draw"
)

// Buffer is a width×height 8-bit RGB raster stored row-major, three bytes
// per pixel. Stage transforms consume one buffer and return a fresh one.
type Buffer struct {
	W, H int
	Pix  []uint8
}

// New allocates a black buffer of the given dimensions. Non-positive
// dimensions yield an empty buffer.
func New(w, h int) *Buffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Buffer{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.W == 0 || b.H == 0
}

// Index returns the offset of pixel (x, y) in Pix. Hot loops index Pix
// directly instead of going through At/Set.
func (b *Buffer) Index(x, y int) int {
	return (y*b.W + x) * 3
}

// At returns the RGB triple at (x, y). Out-of-bounds reads return black.
func (b *Buffer) At(x, y int) (r, g, bl uint8) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return 0, 0, 0
	}
	i := (y*b.W + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set writes the RGB triple at (x, y). Out-of-bounds writes are dropped.
func (b *Buffer) Set(x, y int, r, g, bl uint8) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	i := (y*b.W + x) * 3
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{W: b.W, H: b.H, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// FromImage converts any decoded image into an RGB buffer, dropping alpha.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	out := New(w, h)
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		dst := out.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out
}

// Image renders the buffer as an opaque RGBA image for encoding or scaling.
func (b *Buffer) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		src := b.Pix[y*b.W*3 : (y+1)*b.W*3]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.W*4]
		for x := 0; x < b.W; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return out
}

// ColorAt satisfies ad-hoc comparisons in tests.
func (b *Buffer) ColorAt(x, y int) color.RGBA {
	r, g, bl := b.At(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// SplitRows partitions h rows into up to workers contiguous bands for
// parallel sampling. The last band absorbs the remainder.
func SplitRows(h, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if workers > h {
		workers = h
	}
	if h <= 0 {
		return nil
	}
	rows := make([][2]int, 0, workers)
	step := h / workers
	start := 0
	for i := 0; i < workers; i++ {
		end := start + step
		if i == workers-1 {
			end = h
		}
		rows = append(rows, [2]int{start, end})
		start = end
	}
	return rows
}
