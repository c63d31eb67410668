package detector

import (
	"time"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/annotate"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/profiler"
)

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEngineFactory sets how inference engines are created on Load.
func WithEngineFactory(factory inference.Factory) Option {
	return func(d *Detector) {
		d.factory = factory
	}
}

// WithModelDir sets the directory relative model paths are resolved against.
func WithModelDir(dir string) Option {
	return func(d *Detector) {
		d.modelDir = dir
	}
}

// WithClasses sets the class names used for labels.
func WithClasses(classes *models.ClassSet) Option {
	return func(d *Detector) {
		d.annotate.Classes = classes
	}
}

// WithPalette sets the detection colors.
func WithPalette(palette annotate.Palette) Option {
	return func(d *Detector) {
		d.annotate.Palette = palette
	}
}

// WithAgnosticNMS suppresses overlapping boxes regardless of their labels.
func WithAgnosticNMS(agnostic bool) Option {
	return func(d *Detector) {
		d.agnostic = agnostic
	}
}

// WithTimings records per-stage durations into timings.
func WithTimings(timings *profiler.Timings) Option {
	return func(d *Detector) {
		d.timings = timings
	}
}

// WithFPSOverlay makes Render draw the moving-average frame rate.
func WithFPSOverlay(enabled bool) Option {
	return func(d *Detector) {
		if enabled {
			d.fps = profiler.NewFPS()
		} else {
			d.fps = nil
		}
	}
}

// WithClock replaces the clock used by the frame rate overlay.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}
