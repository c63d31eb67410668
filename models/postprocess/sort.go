package postprocess

import "sort"

// SortByScore orders detections in place so that Prob is non-increasing.
//
// The sort is stable, so detections with equal scores keep their decode order and results are
// reproducible across runs. It runs in O(n log n) for every input, including all-equal scores.
//
// Arguments:
//   - detections: The detections to sort.
func SortByScore(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Prob > detections[j].Prob
	})
}
