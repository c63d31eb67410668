// Package postprocess - Postprocessing stages shared by every detector output format.
//
// A frame flows through the stages in order: candidates decoded from the raw tensor are sorted by
// confidence (SortByScore), filtered by greedy non-maximum suppression (NMS), and finally mapped
// from letterboxed inference space back into the original image (Remap).
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-yolo/images"
)

// Detection is a single labelled box.
type Detection struct {
	// Box is the bounding box, in inference space until Remap rewrites it in image space.
	Box images.Rect `json:"box" yaml:"box"`
	// Label is the 0-based class index.
	Label int `json:"label" yaml:"label"`
	// Prob is the confidence score in [0, 1].
	Prob float32 `json:"prob" yaml:"prob"`
}

func (d Detection) String() string {
	return fmt.Sprintf("label=%d prob=%.4f box=%s", d.Label, d.Prob, d.Box)
}

// Pick returns the detections at the given indices, in index order.
//
// Arguments:
//   - detections: The candidate detections.
//   - indices: Indices into detections, typically the output of NMS.
//
// Returns:
//   - []Detection: A new slice holding copies of the picked detections.
func Pick(detections []Detection, indices []int) []Detection {
	picked := make([]Detection, len(indices))
	for i, idx := range indices {
		picked[i] = detections[idx]
	}
	return picked
}
