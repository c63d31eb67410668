package yolo

import (
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// PostProcessArgs carries everything needed to turn one raw output tensor into final detections.
type PostProcessArgs struct {
	// ConfidenceThreshold is the minimum (exclusive) score for a candidate.
	ConfidenceThreshold float32
	// NMS configures non-maximum suppression.
	NMS postprocess.NMSConfig
	// NumLabels restricts the class scores considered per anchor. Zero uses every class slot.
	NumLabels int
	// Letterbox describes how the source image was prepared for the network.
	Letterbox images.Letterbox
}

// PostProcess decodes the view, sorts candidates by score, applies NMS and maps the survivors back
// into the source image described by the letterbox.
//
// Arguments:
//   - view: The validated output tensor.
//   - args: Thresholds and letterbox bookkeeping.
//
// Returns:
//   - []postprocess.Detection: Final detections in source image coordinates, highest score first.
//   - error: A decode or remap error; no detections are returned in that case.
//
// Example:
//
// ```go
//
//	lb := images.NewLetterbox(1280, 720, 320)
//	view, _ := NewView(output, 84, 2100, FormatModern)
//	dets, err := PostProcess(view, PostProcessArgs{
//	    ConfidenceThreshold: 0.25,
//	    NMS:                 postprocess.NMSConfig{IoUThreshold: 0.45},
//	    Letterbox:           lb,
//	})
//
// ```
func PostProcess(view *View, args PostProcessArgs) ([]postprocess.Detection, error) {
	proposals, err := Decode(view, DecodeOptions{
		ConfidenceThreshold: args.ConfidenceThreshold,
		NumLabels:           args.NumLabels,
		InputWidth:          args.Letterbox.InputWidth(),
		InputHeight:         args.Letterbox.InputHeight(),
	})
	if err != nil {
		return nil, err
	}

	postprocess.SortByScore(proposals)
	picked := postprocess.Pick(proposals, postprocess.NMS(proposals, args.NMS))

	err = postprocess.Remap(picked, args.Letterbox, args.Letterbox.SourceWidth, args.Letterbox.SourceHeight)
	if err != nil {
		return nil, err
	}

	return picked, nil
}
