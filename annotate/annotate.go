// Package annotate - Draws detections, banners and frame rate overlays onto frames.
//
// Drawing goes through the Canvas interface so the same layout rules serve raster images and
// OpenCV matrices.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

const (
	// Filled is the thickness that fills a rectangle.
	Filled = -1
	// BoxThickness is the stroke width of detection boxes.
	BoxThickness = 2
	// LabelScale is the font scale of detection labels and the frame rate overlay.
	LabelScale = 0.5
	// BannerScale is the font scale of the "unsupported" banner.
	BannerScale = 1.0
	// UnsupportedText is shown when no detector is available.
	UnsupportedText = "unsupported"
)

var (
	// Black is the dark text color.
	Black = color.RGBA{A: 255}
	// White is the light text and banner color.
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Canvas is a drawable frame.
type Canvas interface {
	// Size returns the frame width and height in pixels.
	Size() (width, height int)
	// Rectangle strokes r with the given thickness, or fills it when thickness is Filled.
	Rectangle(r image.Rectangle, c color.RGBA, thickness int)
	// TextSize measures text at the given scale. height is the ascent above the baseline and
	// baseline the descent below it.
	TextSize(text string, scale float64) (width, height, baseline int)
	// Text draws text with its baseline starting at origin.
	Text(text string, origin image.Point, scale float64, c color.RGBA)
}

// Options controls detection drawing.
type Options struct {
	// Palette colors detections by label. Empty uses DefaultPalette.
	Palette Palette
	// Classes names labels. Nil uses models.COCO.
	Classes *models.ClassSet
}

// Label formats the text drawn above a detection.
//
// Arguments:
//   - name: The class name.
//   - prob: The detection confidence in [0, 1].
//
// Returns:
//   - string: "<name> <prob*100 with one decimal>%", e.g. "person 87.3%".
func Label(name string, prob float32) string {
	return fmt.Sprintf("%s %.1f%%", name, prob*100)
}

// Placement returns the label background rectangle for a detection box.
//
// The label sits flush above the box. It is clamped to the top edge when there is no room above,
// and shifted left when it would overflow the right edge of a canvas canvasWidth pixels wide.
//
// Arguments:
//   - box: The detection box in pixels.
//   - textWidth, textHeight, baseline: The measured label text.
//   - canvasWidth: The frame width.
//
// Returns:
//   - image.Rectangle: The label background. Text is drawn at (Min.X, Min.Y+textHeight).
func Placement(box image.Rectangle, textWidth, textHeight, baseline, canvasWidth int) image.Rectangle {
	x := box.Min.X
	y := box.Min.Y - textHeight - baseline
	if y < 0 {
		y = 0
	}
	if x+textWidth > canvasWidth {
		x = canvasWidth - textWidth
	}
	return image.Rect(x, y, x+textWidth, y+textHeight+baseline)
}

// TextColor picks a foreground with enough contrast against background: black when the channel
// sum is at least 381, white otherwise.
func TextColor(background color.RGBA) color.RGBA {
	if int(background.R)+int(background.G)+int(background.B) >= 381 {
		return Black
	}
	return White
}

// Draw strokes every detection box and draws its label.
//
// Arguments:
//   - canvas: The frame to draw on.
//   - dets: Detections in frame coordinates.
//   - opts: Palette and class names.
//
// Example:
//
// ```go
//
//	dets, _ := d.Detect(ctx, frame, detector.DefaultThresholds())
//	annotate.Draw(raster.New(frame), dets, annotate.Options{})
//
// ```
func Draw(canvas Canvas, dets []postprocess.Detection, opts Options) {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	classes := opts.Classes
	if classes == nil {
		classes = models.COCO
	}

	width, _ := canvas.Size()
	for _, det := range dets {
		c := palette.Color(det.Label)
		box := det.Box.ToImageRect()
		canvas.Rectangle(box, c, BoxThickness)

		text := Label(classes.Name(det.Label), det.Prob)
		tw, th, base := canvas.TextSize(text, LabelScale)
		bg := Placement(box, tw, th, base, width)

		canvas.Rectangle(bg, c, Filled)
		canvas.Text(text, image.Pt(bg.Min.X, bg.Min.Y+th), LabelScale, TextColor(c))
	}
}

// DrawUnsupported draws a centered white banner reading UnsupportedText.
func DrawUnsupported(canvas Canvas) {
	width, height := canvas.Size()
	tw, th, base := canvas.TextSize(UnsupportedText, BannerScale)

	x := (width - tw) / 2
	y := (height - th) / 2
	canvas.Rectangle(image.Rect(x, y, x+tw, y+th+base), White, Filled)
	canvas.Text(UnsupportedText, image.Pt(x, y+th), BannerScale, Black)
}

// FPSText formats a frame rate for the overlay.
func FPSText(fps float64) string {
	return fmt.Sprintf("FPS=%.2f", fps)
}

// DrawFPS draws the frame rate in the top-right corner, black on white.
func DrawFPS(canvas Canvas, fps float64) {
	width, _ := canvas.Size()
	text := FPSText(fps)
	tw, th, base := canvas.TextSize(text, LabelScale)

	x := width - tw
	canvas.Rectangle(image.Rect(x, 0, x+tw, th+base), White, Filled)
	canvas.Text(text, image.Pt(x, th), LabelScale, Black)
}
