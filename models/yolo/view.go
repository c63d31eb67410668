package yolo

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ErrShapeMismatch is returned when a raw buffer does not match its declared shape or cannot hold
// the box and class slots its format requires.
var ErrShapeMismatch = errors.New("tensor shape mismatch")

// View is a bounds-checked, anchor-major view over a raw output tensor.
//
// Whatever the engine layout, a View exposes one contiguous row of Channels() values per anchor.
type View struct {
	data     []float32
	anchors  int
	channels int
	format   Format
}

// NewView validates a raw output buffer and arranges it anchor-major.
//
// rows and cols are the buffer dimensions as produced by the engine: [channels, anchors] for
// channel-major formats and [anchors, channels] otherwise. Channel-major buffers are copied and
// transposed; the caller's buffer is never modified.
//
// Arguments:
//   - data: The raw row-major buffer.
//   - rows: The outer dimension.
//   - cols: The inner dimension.
//   - format: The output format.
//
// Returns:
//   - *View: The validated view.
//   - error: ErrShapeMismatch if len(data) != rows*cols, a dimension is not positive, or the
//     channel count leaves no room for class scores.
//
// Example:
//
// ```go
//
//	// 84 channels (4 box + 80 classes) over 2100 anchors.
//	view, err := NewView(output, 84, 2100, FormatModern)
//	if err != nil {
//	    return err
//	}
//	view.Anchors()  // 2100
//	view.NumLabels() // 80
//
// ```
func NewView(data []float32, rows, cols int, format Format) (*View, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "non-positive shape [%d, %d]", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "buffer holds %d values, shape [%d, %d] needs %d",
			len(data), rows, cols, rows*cols)
	}

	anchors, channels := rows, cols
	if format.ChannelMajor() {
		anchors, channels = cols, rows
	}
	if format.NumLabels(channels) < 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d channels cannot hold %s boxes with class scores",
			channels, format)
	}

	if !format.ChannelMajor() || rows == 1 || cols == 1 {
		return &View{data: data, anchors: anchors, channels: channels, format: format}, nil
	}

	backing := make([]float32, len(data))
	copy(backing, data)

	t := tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
	if err := t.T(); err != nil {
		return nil, errors.Wrap(err, "transposing output tensor")
	}
	if err := t.Transpose(); err != nil {
		return nil, errors.Wrap(err, "materialising transposed output tensor")
	}

	transposed, ok := t.Data().([]float32)
	if !ok || len(transposed) != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "transposed tensor has unexpected backing %T", t.Data())
	}

	return &View{data: transposed, anchors: anchors, channels: channels, format: format}, nil
}

// Anchors returns the number of anchor rows.
func (v *View) Anchors() int {
	return v.anchors
}

// Channels returns the number of values per anchor.
func (v *View) Channels() int {
	return v.channels
}

// NumLabels returns the number of class scores per anchor.
func (v *View) NumLabels() int {
	return v.format.NumLabels(v.channels)
}

// Format returns the output format of the view.
func (v *View) Format() Format {
	return v.format
}

// Row returns the values of anchor i. The returned slice must not be appended to.
func (v *View) Row(i int) []float32 {
	off := i * v.channels
	return v.data[off : off+v.channels : off+v.channels]
}
