package detector

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

const (
	// DefaultConfidence is the default minimum (exclusive) detection score.
	DefaultConfidence = 0.25
	// DefaultIoU is the default NMS overlap threshold.
	DefaultIoU = 0.45
)

// Thresholds are the per-frame detection thresholds.
type Thresholds struct {
	// Confidence is the minimum score, exclusive, for a candidate to be kept.
	Confidence float32 `json:"confidence" yaml:"confidence"`
	// IoU is the overlap above which NMS suppresses the lower-scored box.
	IoU float32 `json:"iou" yaml:"iou"`
}

// DefaultThresholds returns confidence 0.25 and IoU 0.45.
func DefaultThresholds() Thresholds {
	return Thresholds{Confidence: DefaultConfidence, IoU: DefaultIoU}
}

// Validate checks that both thresholds lie in [0, 1].
func (t Thresholds) Validate() error {
	if !inUnitRange(t.Confidence) {
		return errors.Wrapf(ErrInvalidThreshold, "confidence %v outside [0, 1]", t.Confidence)
	}
	if !inUnitRange(t.IoU) {
		return errors.Wrapf(ErrInvalidThreshold, "iou %v outside [0, 1]", t.IoU)
	}
	return nil
}

func inUnitRange(v float32) bool {
	return !math32.IsNaN(v) && v >= 0 && v <= 1
}
