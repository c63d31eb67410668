package images

import "fmt"

// Stride is the alignment applied to the padded inference canvas.
const Stride = 32

// Letterbox records how an image was resized and padded before inference so that boxes can be
// mapped back into the original image.
type Letterbox struct {
	// SourceWidth, SourceHeight are the original image dimensions.
	SourceWidth  int `json:"source_width"  yaml:"source_width"`
	SourceHeight int `json:"source_height" yaml:"source_height"`
	// ResizedWidth, ResizedHeight are the dimensions after the aspect-preserving resize.
	ResizedWidth  int `json:"resized_width"  yaml:"resized_width"`
	ResizedHeight int `json:"resized_height" yaml:"resized_height"`
	// Scale is target size divided by the longer source side.
	Scale float32 `json:"scale" yaml:"scale"`
	// PadWidth, PadHeight are the total horizontal and vertical padding. Half of each (rounded
	// down) is placed before the image, the remainder after.
	PadWidth  int `json:"pad_width"  yaml:"pad_width"`
	PadHeight int `json:"pad_height" yaml:"pad_height"`
}

// NewLetterbox computes the resize and padding for an image of srcW x srcH pixels fed to a
// network with the given target size.
//
// The longer side is scaled to target, the shorter side keeps the aspect ratio (truncated to
// whole pixels), and both sides are padded up to target rounded to the next multiple of Stride.
//
// Arguments:
//   - srcW: The source image width.
//   - srcH: The source image height.
//   - target: The network target size.
//
// Returns:
//   - Letterbox: The bookkeeping needed to invert the transform.
//
// Example:
//
// ```go
//
//	lb := NewLetterbox(640, 480, 320)
//	// lb.Scale == 0.5, lb.ResizedWidth == 320, lb.ResizedHeight == 240
//	// lb.PadWidth == 0, lb.PadHeight == 80
//
// ```
func NewLetterbox(srcW, srcH, target int) Letterbox {
	w, h := srcW, srcH
	var scale float32
	if w > h {
		scale = float32(target) / float32(w)
		w = target
		h = int(float32(h) * scale)
	} else {
		scale = float32(target) / float32(h)
		h = target
		w = int(float32(w) * scale)
	}

	aligned := AlignToStride(target)

	return Letterbox{
		SourceWidth:   srcW,
		SourceHeight:  srcH,
		ResizedWidth:  w,
		ResizedHeight: h,
		Scale:         scale,
		PadWidth:      aligned - w,
		PadHeight:     aligned - h,
	}
}

// AlignToStride rounds n up to the next multiple of Stride.
func AlignToStride(n int) int {
	return (n + Stride - 1) / Stride * Stride
}

// Left returns the padding placed to the left of the resized image.
func (l Letterbox) Left() int {
	return l.PadWidth / 2
}

// Top returns the padding placed above the resized image.
func (l Letterbox) Top() int {
	return l.PadHeight / 2
}

// InputWidth returns the padded canvas width handed to the network.
func (l Letterbox) InputWidth() int {
	return l.ResizedWidth + l.PadWidth
}

// InputHeight returns the padded canvas height handed to the network.
func (l Letterbox) InputHeight() int {
	return l.ResizedHeight + l.PadHeight
}

func (l Letterbox) String() string {
	return fmt.Sprintf("%dx%d -> %dx%d (scale %.4f, pad %dx%d)",
		l.SourceWidth, l.SourceHeight, l.InputWidth(), l.InputHeight(), l.Scale, l.PadWidth, l.PadHeight)
}
