package cv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/annotate"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

func TestCanvas_Size(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer mat.Close()

	w, h := New(&mat).Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestCanvas_FilledRectangle(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 40, 40, gocv.MatTypeCV8UC3)
	defer mat.Close()

	New(&mat).Rectangle(image.Rect(10, 10, 20, 20), color.RGBA{R: 255, A: 255}, annotate.Filled)

	v := mat.GetVecbAt(15, 15)
	assert.Equal(t, uint8(0), v[0])
	assert.Equal(t, uint8(255), v[2], "red lands in the third channel of a BGR matrix")
	assert.Equal(t, uint8(0), mat.GetVecbAt(5, 5)[2])
}

func TestCanvas_TextSize(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer mat.Close()

	c := New(&mat)
	w, h, base := c.TextSize("unsupported", annotate.BannerScale)
	require.Positive(t, w)
	require.Positive(t, h)
	assert.GreaterOrEqual(t, base, 0)

	small, _, _ := c.TextSize("unsupported", annotate.LabelScale)
	assert.Less(t, small, w)
}

func TestDraw(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer mat.Close()

	dets := []postprocess.Detection{
		{Box: images.Rect{X: 50, Y: 60, Width: 100, Height: 80}, Label: 1, Prob: 0.66},
	}
	annotate.Draw(New(&mat), dets, annotate.Options{})

	c := annotate.DefaultPalette.Color(1)
	v := mat.GetVecbAt(60, 100)
	assert.Equal(t, []uint8{c.B, c.G, c.R}, []uint8{v[0], v[1], v[2]})
	assert.Equal(t, uint8(0), mat.GetVecbAt(100, 100)[0])
}

func TestCanvas_RGB(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 40, 40, gocv.MatTypeCV8UC3)
	defer mat.Close()

	NewRGB(&mat).Rectangle(image.Rect(10, 10, 20, 20), color.RGBA{R: 255, A: 255}, annotate.Filled)

	v := mat.GetVecbAt(15, 15)
	assert.Equal(t, uint8(255), v[0], "red lands in the first channel of an RGB matrix")
	assert.Equal(t, uint8(0), v[2])
}
