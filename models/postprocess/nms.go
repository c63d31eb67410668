package postprocess

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the overlap above which a lower scored box is suppressed. A pair whose IoU
	// equals the threshold is kept.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// Agnostic suppresses overlapping boxes regardless of label. By default only boxes sharing a
	// label suppress each other.
	Agnostic bool `json:"agnostic" yaml:"agnostic"`
}

// NMS performs greedy Non-Maximum Suppression over score-sorted detections.
//
// Each detection is compared against every detection kept so far; it is discarded if its IoU with
// any kept detection of the same label (any label in agnostic mode) is strictly greater than the
// threshold. Because the input is sorted by score, the higher scored box always wins and
// suppressed boxes are dropped, never merged.
//
// Arguments:
//   - detections: Detections sorted by descending Prob (see SortByScore).
//   - config: NMS configuration.
//
// Returns:
//   - []int: Indices of the kept detections, in ascending order. Nil when nothing is kept.
//
// Example:
//
// ```go
//
//	SortByScore(candidates)
//	keep := NMS(candidates, NMSConfig{IoUThreshold: 0.45})
//	final := Pick(candidates, keep)
//
// ```
func NMS(detections []Detection, config NMSConfig) []int {
	n := len(detections)
	if n == 0 {
		return nil
	}

	areas := make([]float32, n)
	for i := range detections {
		areas[i] = detections[i].Box.Area()
	}

	var picked []int
	for i := 0; i < n; i++ {
		a := detections[i]

		keep := true
		for _, j := range picked {
			b := detections[j]
			if !config.Agnostic && a.Label != b.Label {
				continue
			}

			inter := a.Box.IntersectionArea(b.Box)
			union := areas[i] + areas[j] - inter
			// Degenerate pairs (union 0) never suppress.
			if union > 0 && inter/union > config.IoUThreshold {
				keep = false
				break
			}
		}

		if keep {
			picked = append(picked, i)
		}
	}

	return picked
}

// ApplyNMS sorts detections in place, runs NMS, and returns the kept detections.
//
// Arguments:
//   - detections: Unsorted candidate detections.
//   - config: NMS configuration.
//
// Returns:
//   - []Detection: The kept detections in descending score order.
func ApplyNMS(detections []Detection, config NMSConfig) []Detection {
	SortByScore(detections)
	return Pick(detections, NMS(detections, config))
}
