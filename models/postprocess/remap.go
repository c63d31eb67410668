package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
)

// ErrInvalidScale is returned by Remap when the letterbox scale cannot be inverted.
var ErrInvalidScale = errors.New("letterbox scale must be positive")

// Remap rewrites detections in place from letterboxed inference space into original image space.
//
// For each corner the half padding placed before the image is subtracted and the result divided by
// the letterbox scale. Both corners are then clipped independently to [0, width-1] x
// [0, height-1] and the size recomputed from the clipped corners. Inverted corners are swapped, so
// width and height are never negative.
//
// Arguments:
//   - detections: Detections in inference space; rewritten in place.
//   - lb: The letterbox used to prepare the network input.
//   - width: The original image width.
//   - height: The original image height.
//
// Returns:
//   - error: ErrInvalidScale if lb.Scale is not positive. Detections are untouched in that case.
//
// Example:
//
// ```go
//
//	dets := []Detection{{Box: images.Rect{X: 110, Y: 70, Width: 100, Height: 100}}}
//	_ = Remap(dets, images.Letterbox{Scale: 0.5}, 640, 480)
//	// dets[0].Box == images.Rect{X: 220, Y: 140, Width: 200, Height: 200}
//
// ```
func Remap(detections []Detection, lb images.Letterbox, width, height int) error {
	if !(lb.Scale > 0) {
		return errors.Wrapf(ErrInvalidScale, "got %v", lb.Scale)
	}

	left := float32(lb.Left())
	top := float32(lb.Top())
	maxX := float32(width - 1)
	maxY := float32(height - 1)

	for i := range detections {
		box := detections[i].Box

		x0 := (box.X - left) / lb.Scale
		y0 := (box.Y - top) / lb.Scale
		x1 := (box.Right() - left) / lb.Scale
		y1 := (box.Bottom() - top) / lb.Scale

		x0 = clip(x0, maxX)
		y0 = clip(y0, maxY)
		x1 = clip(x1, maxX)
		y1 = clip(y1, maxY)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}

		detections[i].Box = images.RectFromCorners(x0, y0, x1, y1)
	}

	return nil
}

// clip bounds v to [0, hi], applying the upper bound first.
// TODO: the upper bound is the last pixel index (size-1) while the lower bound is the pixel edge 0;
// revisit once downstream consumers agree on edge versus index semantics.
func clip(v, hi float32) float32 {
	return math32.Max(math32.Min(v, hi), 0)
}
