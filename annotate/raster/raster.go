// Package raster - annotate.Canvas over in-memory RGBA images.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/nvr-ai/go-yolo/annotate"
)

// baseScale is the font scale rendered at the native 7x13 glyph size.
const baseScale = 0.5

// Canvas draws onto an *image.RGBA in place.
type Canvas struct {
	dc *gg.Context
}

// New wraps img. Drawing mutates img directly.
func New(img *image.RGBA) *Canvas {
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(basicfont.Face7x13)
	return &Canvas{dc: dc}
}

// FromImage copies img into a new RGBA canvas and returns both.
func FromImage(img image.Image) (*Canvas, *image.RGBA) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return New(rgba), rgba
}

// Size returns the image width and height.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Rectangle strokes or fills r.
func (c *Canvas) Rectangle(r image.Rectangle, col color.RGBA, thickness int) {
	c.dc.SetColor(col)
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)

	if thickness == annotate.Filled {
		c.dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		c.dc.Fill()
		return
	}

	c.dc.SetLineWidth(float64(max(thickness, 1)))
	c.dc.DrawLine(x0, y0, x1, y0)
	c.dc.DrawLine(x1, y0, x1, y1)
	c.dc.DrawLine(x1, y1, x0, y1)
	c.dc.DrawLine(x0, y1, x0, y0)
	c.dc.Stroke()
}

// TextSize measures text in the 7x13 bitmap font scaled by scale/0.5.
func (c *Canvas) TextSize(text string, scale float64) (width, height, baseline int) {
	k := scale / baseScale
	w, _ := c.dc.MeasureString(text)
	metrics := basicfont.Face7x13.Metrics()
	return int(w * k), int(float64(metrics.Ascent.Ceil()) * k), int(float64(metrics.Descent.Ceil()) * k)
}

// Text draws text with its baseline at origin.
func (c *Canvas) Text(text string, origin image.Point, scale float64, col color.RGBA) {
	k := scale / baseScale
	c.dc.Push()
	defer c.dc.Pop()

	c.dc.SetColor(col)
	c.dc.Translate(float64(origin.X), float64(origin.Y))
	c.dc.Scale(k, k)
	c.dc.DrawString(text, 0, 0)
}
