// Package cv - annotate.Canvas over OpenCV matrices.
package cv

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font is the Hershey face used for all text.
const Font = gocv.FontHersheySimplex

// Canvas draws onto a gocv.Mat in place. The caller keeps ownership of the matrix.
type Canvas struct {
	mat *gocv.Mat
	rgb bool
}

// New wraps a BGR matrix as delivered by gocv.VideoCapture and IMRead.
func New(mat *gocv.Mat) *Canvas {
	return &Canvas{mat: mat}
}

// NewRGB wraps a matrix holding RGB channel order, e.g. one converted with CvtColor for a model.
func NewRGB(mat *gocv.Mat) *Canvas {
	return &Canvas{mat: mat, rgb: true}
}

// color maps col to what gocv writes as B, G, R.
func (c *Canvas) color(col color.RGBA) color.RGBA {
	if c.rgb {
		col.R, col.B = col.B, col.R
	}
	return col
}

// Size returns the matrix width and height.
func (c *Canvas) Size() (int, int) {
	return c.mat.Cols(), c.mat.Rows()
}

// Rectangle strokes r, or fills it when thickness is annotate.Filled.
func (c *Canvas) Rectangle(r image.Rectangle, col color.RGBA, thickness int) {
	gocv.Rectangle(c.mat, r, c.color(col), thickness)
}

// TextSize measures text at scale with a stroke of one pixel.
func (c *Canvas) TextSize(text string, scale float64) (width, height, baseline int) {
	size, base := gocv.GetTextSizeWithBaseline(text, Font, scale, 1)
	return size.X, size.Y, base
}

// Text draws text with its baseline at origin.
func (c *Canvas) Text(text string, origin image.Point, scale float64, col color.RGBA) {
	gocv.PutText(c.mat, text, origin, Font, scale, c.color(col), 1)
}
