// Package models - Class label sets for detection models.
package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownClass is returned when a class name is not part of a set.
var ErrUnknownClass = errors.New("unknown class")

// ClassSet maps 0-based class indices to human-readable names.
type ClassSet struct {
	names     []string
	nameToIdx map[string]int
}

// NewClassSet builds a class set from names ordered by class index.
//
// Arguments:
//   - names: The class names, index i naming class i.
//
// Returns:
//   - *ClassSet: The class set.
func NewClassSet(names ...string) *ClassSet {
	set := &ClassSet{
		names:     append([]string(nil), names...),
		nameToIdx: make(map[string]int, len(names)),
	}
	for i, name := range set.names {
		if _, ok := set.nameToIdx[name]; !ok {
			set.nameToIdx[name] = i
		}
	}
	return set
}

// Len returns the number of classes in the set.
func (s *ClassSet) Len() int {
	return len(s.names)
}

// Name returns the name of class idx, or "class <idx>" when the set has no such class.
func (s *ClassSet) Name(idx int) string {
	if idx < 0 || idx >= len(s.names) {
		return fmt.Sprintf("class %d", idx)
	}
	return s.names[idx]
}

// Index returns the index of the named class.
func (s *ClassSet) Index(name string) (int, error) {
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, errors.Wrapf(ErrUnknownClass, "%q", name)
	}
	return idx, nil
}

// Names returns a copy of the class names.
func (s *ClassSet) Names() []string {
	return append([]string(nil), s.names...)
}

// COCO is the 80-class COCO label set used by YOLO models (no background class).
var COCO = NewClassSet(
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
)
