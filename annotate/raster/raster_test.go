package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/annotate"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

var gray = color.RGBA{R: 60, G: 60, B: 60, A: 255}

func background(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func countColor(img *image.RGBA, r image.Rectangle, c color.RGBA) int {
	n := 0
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func countWhere(img *image.RGBA, r image.Rectangle, pred func(color.RGBA) bool) int {
	n := 0
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if pred(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func bright(c color.RGBA) bool { return c.R > 200 && c.G > 200 && c.B > 200 }

func dark(c color.RGBA) bool { return c.R < 40 && c.G < 40 && c.B < 40 }

func TestCanvas_FilledRectangle(t *testing.T) {
	img := background(40, 40)
	red := color.RGBA{R: 255, A: 255}

	New(img).Rectangle(image.Rect(10, 10, 20, 20), red, annotate.Filled)

	assert.Equal(t, red, img.RGBAAt(15, 15))
	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, gray, img.RGBAAt(5, 5))
	assert.Equal(t, gray, img.RGBAAt(25, 25))
}

func TestCanvas_StrokedRectangle(t *testing.T) {
	img := background(40, 40)
	blue := color.RGBA{B: 255, A: 255}

	New(img).Rectangle(image.Rect(10, 10, 30, 30), blue, annotate.BoxThickness)

	assert.Equal(t, blue, img.RGBAAt(20, 10), "top edge")
	assert.Equal(t, blue, img.RGBAAt(10, 20), "left edge")
	assert.Equal(t, gray, img.RGBAAt(20, 20), "interior untouched")
}

func TestCanvas_TextSize(t *testing.T) {
	c := New(background(10, 10))

	w, h, base := c.TextSize("abc", annotate.LabelScale)
	assert.Equal(t, 21, w)
	assert.Equal(t, 11, h)
	assert.Equal(t, 2, base)

	w, h, base = c.TextSize("abc", annotate.BannerScale)
	assert.Equal(t, 42, w)
	assert.Equal(t, 22, h)
	assert.Equal(t, 4, base)
}

func TestCanvas_Text(t *testing.T) {
	img := background(60, 20)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	New(img).Text("HI", image.Pt(5, 15), annotate.LabelScale, white)

	assert.Positive(t, countWhere(img, image.Rect(5, 2, 19, 17), bright))
	assert.Zero(t, countWhere(img, image.Rect(30, 0, 60, 20), bright))
}

func TestDrawDetections(t *testing.T) {
	img := background(320, 240)
	dets := []postprocess.Detection{
		{Box: images.Rect{X: 50, Y: 60, Width: 100, Height: 80}, Label: 0, Prob: 0.8},
	}

	annotate.Draw(New(img), dets, annotate.Options{})

	c := annotate.DefaultPalette.Color(0)
	assert.Equal(t, c, img.RGBAAt(100, 60), "box top edge")
	// Label background sits directly above the box.
	assert.Positive(t, countColor(img, image.Rect(50, 47, 60, 60), c))
	assert.Equal(t, gray, img.RGBAAt(100, 100))
}

func TestDrawUnsupported(t *testing.T) {
	img := background(200, 100)
	annotate.DrawUnsupported(New(img))

	center := image.Rect(40, 30, 160, 70)
	assert.Positive(t, countColor(img, center, annotate.White))
	assert.Positive(t, countWhere(img, center, dark))
	assert.Equal(t, gray, img.RGBAAt(2, 2))
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 20, 30))
	canvas, rgba := FromImage(src)
	require.NotNil(t, canvas)

	w, h := canvas.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, image.Rect(0, 0, 10, 20), rgba.Bounds())
}
