package frontend

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Scale returns src enlarged by an integer factor with nearest-neighbour
// sampling. A factor below two returns src unchanged.
func Scale(src *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// EncodePNG writes img, scaled by factor, as a PNG.
func EncodePNG(w io.Writer, img *image.RGBA, factor int) error {
	if img == nil {
		return fmt.Errorf("failed to encode screenshot: no frame")
	}
	if err := png.Encode(w, Scale(img, factor)); err != nil {
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return nil
}

// SavePNG writes img, scaled by factor, to a PNG file at path.
func SavePNG(path string, img *image.RGBA, factor int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screenshot %s: %w", path, err)
	}
	if err := EncodePNG(f, img, factor); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
