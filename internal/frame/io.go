package frame

import (
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
)

// Load decodes the image at path into an RGB buffer. PNG and JPEG are the
// formats the pipeline produces; GIF decodes for completeness.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// SavePNG encodes the buffer to path. Stitched frames are intermediate
// artifacts, so the encoder favors speed over ratio.
func SavePNG(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, b.Image()); err != nil {
		return err
	}
	return f.Close()
}

// SaveJPEG encodes the buffer to path with the given quality (1-100).
func SaveJPEG(path string, b *Buffer, quality int) error {
	if quality < 1 || quality > 100 {
		return errors.New("jpeg quality 1..100")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := jpeg.Encode(f, b.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return err
	}
	return f.Close()
}
