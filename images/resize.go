package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrEmptyImage is returned when an image has no pixels.
var ErrEmptyImage = errors.New("image is empty")

// Resize scales img to exactly width x height using bilinear interpolation.
//
// Arguments:
//   - img: The source image.
//   - width: The output width in pixels.
//   - height: The output height in pixels.
//
// Returns:
//   - image.Image: The resized image, with bounds starting at the origin.
//   - error: ErrEmptyImage when img is nil or has no pixels, or the target size is not positive.
func Resize(img image.Image, width, height int) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrEmptyImage, "target size %dx%d", width, height)
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height && b.Min == (image.Point{}) {
		return img, nil
	}
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear), nil
}

// RGB returns the 8-bit red, green and blue components of the pixel at (x, y).
func RGB(img image.Image, x, y int) (r, g, b uint8) {
	switch m := img.(type) {
	case *image.RGBA:
		i := m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	case *image.NRGBA:
		i := m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	}
	r32, g32, b32, _ := img.At(x, y).RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}
