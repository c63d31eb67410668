package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolo"
)

func testConfig(target int) model.Config {
	return model.Config{
		Name:       model.ModelNameYOLOv13n,
		TargetSize: target,
		Norm:       [3]float32{1 / 255.0, 1 / 255.0, 1 / 255.0},
		Format:     yolo.FormatModern,
	}
}

func createTestImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestLetterbox_Landscape(t *testing.T) {
	img := createTestImage(640, 480, color.RGBA{R: 255, G: 0, B: 51, A: 255})

	res, err := Letterbox(img, testConfig(320))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 320, 320}, res.Shape)
	assert.Len(t, res.Data, 3*320*320)
	assert.Equal(t, 320, res.Letterbox.ResizedWidth)
	assert.Equal(t, 240, res.Letterbox.ResizedHeight)
	assert.Equal(t, 40, res.Letterbox.Top())

	plane := 320 * 320
	pad := float32(PadValue) / 255

	// Row 0 is padding, row 160 is image content.
	assert.InDelta(t, pad, res.Data[0], 1e-6)
	assert.InDelta(t, pad, res.Data[plane], 1e-6)
	mid := 160*320 + 160
	assert.InDelta(t, 1.0, res.Data[mid], 1e-2)
	assert.InDelta(t, 0.0, res.Data[plane+mid], 1e-2)
	assert.InDelta(t, 0.2, res.Data[2*plane+mid], 1e-2)

	// Last row is padding again.
	last := 319*320 + 5
	assert.InDelta(t, pad, res.Data[last], 1e-6)
}

func TestLetterbox_MeanAndNorm(t *testing.T) {
	img := createTestImage(32, 32, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	cfg := testConfig(32)
	cfg.Mean = [3]float32{100, 50, 0}
	cfg.Norm = [3]float32{1, 2, 0.5}

	res, err := Letterbox(img, cfg)
	require.NoError(t, err)

	plane := 32 * 32
	assert.InDelta(t, 0, res.Data[0], 1e-4)
	assert.InDelta(t, 100, res.Data[plane], 1e-4)
	assert.InDelta(t, 50, res.Data[2*plane], 1e-4)
}

func TestLetterbox_UnalignedTarget(t *testing.T) {
	img := createTestImage(1920, 1080, color.RGBA{A: 255})

	res, err := Letterbox(img, testConfig(300))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 320, 320}, res.Shape)
	assert.Equal(t, images.NewLetterbox(1920, 1080, 300), res.Letterbox)
}

func TestLetterbox_Errors(t *testing.T) {
	_, err := Letterbox(image.NewRGBA(image.Rect(0, 0, 0, 0)), testConfig(320))
	assert.ErrorIs(t, err, images.ErrEmptyImage)

	_, err = Letterbox(nil, testConfig(320))
	assert.ErrorIs(t, err, images.ErrEmptyImage)

	_, err = Letterbox(createTestImage(4, 4, color.RGBA{}), testConfig(0))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	// A 1000:1 strip truncates its short side to zero pixels.
	_, err = Letterbox(createTestImage(1000, 1, color.RGBA{}), testConfig(320))
	assert.ErrorIs(t, err, images.ErrEmptyImage)
}

func TestPreprocessor_ReusesBuffers(t *testing.T) {
	p, err := NewPreprocessor(testConfig(64))
	require.NoError(t, err)

	img := createTestImage(64, 48, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	first, err := p.Preprocess(img)
	require.NoError(t, err)
	expected := append([]float32(nil), first.Data...)
	p.Release(first)
	assert.Nil(t, first.Data)

	second, err := p.Preprocess(img)
	require.NoError(t, err)
	assert.Equal(t, expected, second.Data)
}

func TestNewPreprocessor_InvalidConfig(t *testing.T) {
	_, err := NewPreprocessor(model.Config{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
