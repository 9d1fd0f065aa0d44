// Package imaging moves pixel data between image files and the
// in-memory representation the clipboard backends exchange.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	// Formats the file decoder accepts besides the stdlib ones.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
)

// Quality maps a compression factor in [0.0, 1.0] to a JPEG quality
// parameter clamped to [0, 100].
func Quality(factor float64) int {
	q := int(factor * 100)
	if q < 0 {
		q = 0
	}
	if q > 100 {
		q = 100
	}
	return q
}

// DecodeFile reads and decodes an image file in any registered format.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func DecodePNG(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path as lossless PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// SaveJPEG writes img to path as lossy JPEG at the given quality in
// [0, 100].
func SaveJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
