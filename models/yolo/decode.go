package yolo

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// DecodeOptions controls how anchors are turned into candidate detections.
type DecodeOptions struct {
	// ConfidenceThreshold is the score an anchor must strictly exceed to be emitted.
	ConfidenceThreshold float32
	// NumLabels restricts the class scores considered per anchor. Zero uses every class slot.
	NumLabels int
	// InputWidth, InputHeight bound the decoded corners (the padded network input size).
	InputWidth  int
	InputHeight int
}

// Decode walks every anchor of the view and emits candidate detections in inference space.
//
// For each anchor the highest class score is selected (the first one on ties) and, for formats
// carrying objectness, multiplied by it. Anchors whose score is strictly greater than the
// confidence threshold are converted from center form to corners, each corner clamped to
// [0, InputWidth] x [0, InputHeight]. Scores are used as-is: no sigmoid or softmax is applied.
// Anchors with non-finite box parameters are skipped.
//
// Arguments:
//   - view: The validated output tensor.
//   - opts: Decode options.
//
// Returns:
//   - []postprocess.Detection: Candidates in anchor order.
//   - error: ErrShapeMismatch when opts.NumLabels exceeds the class slots of the view.
func Decode(view *View, opts DecodeOptions) ([]postprocess.Detection, error) {
	numLabels := view.NumLabels()
	if opts.NumLabels > numLabels {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d labels requested, tensor carries %d",
			opts.NumLabels, numLabels)
	}
	if opts.NumLabels > 0 {
		numLabels = opts.NumLabels
	}

	offset := view.format.ClassOffset()
	maxX := float32(opts.InputWidth)
	maxY := float32(opts.InputHeight)

	var detections []postprocess.Detection
	for i := 0; i < view.Anchors(); i++ {
		row := view.Row(i)

		label, score := argmax(row[offset : offset+numLabels])
		if view.format.HasObjectness() {
			score *= row[4]
		}
		if !(score > opts.ConfidenceThreshold) {
			continue
		}

		x, y, w, h := row[0], row[1], row[2], row[3]
		if !finite(x) || !finite(y) || !finite(w) || !finite(h) {
			continue
		}

		x0 := images.Clamp(x-0.5*w, 0, maxX)
		y0 := images.Clamp(y-0.5*h, 0, maxY)
		x1 := images.Clamp(x+0.5*w, 0, maxX)
		y1 := images.Clamp(y+0.5*h, 0, maxY)

		detections = append(detections, postprocess.Detection{
			Box:   images.RectFromCorners(x0, y0, x1, y1),
			Label: label,
			Prob:  score,
		})
	}

	return detections, nil
}

func argmax(scores []float32) (int, float32) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
