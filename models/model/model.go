// Package model - Detection model configuration.
package model

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models/yolo"
)

// ErrInvalidConfig is returned by Validate for unusable configurations.
var ErrInvalidConfig = errors.New("invalid model configuration")

// Name is the unique identifier of a model variant.
type Name string

const (
	// ModelNameYOLOv13n is the nano YOLOv13 variant.
	ModelNameYOLOv13n Name = "yolov13n"
	// ModelNameYOLOv13s is the small YOLOv13 variant.
	ModelNameYOLOv13s Name = "yolov13s"
	// ModelNameYOLOv5n is the nano YOLOv5 variant, which uses the legacy output format.
	ModelNameYOLOv5n Name = "yolov5n"
)

// Config is fixed when a model is loaded and read on every frame.
type Config struct {
	// Name identifies the variant.
	Name Name `json:"name" yaml:"name"`
	// Path is the model file handed to the inference engine. Relative paths are resolved against
	// the model directory.
	Path string `json:"path" yaml:"path"`
	// TargetSize is the length the longer image side is resized to.
	TargetSize int `json:"target_size" yaml:"target_size"`
	// Mean is subtracted from each RGB channel before Norm is applied.
	Mean [3]float32 `json:"mean" yaml:"mean"`
	// Norm multiplies each RGB channel after the mean is subtracted.
	Norm [3]float32 `json:"norm" yaml:"norm"`
	// Format is the layout of the output tensor.
	Format yolo.Format `json:"format" yaml:"format"`
	// NumLabels restricts decoding to the first NumLabels classes. Zero uses every class slot.
	NumLabels int `json:"num_labels" yaml:"num_labels"`
	// InputName, OutputName are the graph node names of the network input and output.
	InputName  string `json:"input_name"  yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
	// Device selects where the engine runs the network.
	Device Device `json:"device" yaml:"device"`
}

// Validate checks that the configuration can drive preprocessing and decoding.
//
// Returns:
//   - error: ErrInvalidConfig describing the first problem found.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.Wrap(ErrInvalidConfig, "name is required")
	}
	if c.TargetSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "target size must be positive, got %d", c.TargetSize)
	}
	if c.NumLabels < 0 {
		return errors.Wrapf(ErrInvalidConfig, "num labels must not be negative, got %d", c.NumLabels)
	}
	if c.Format != yolo.FormatModern && c.Format != yolo.FormatLegacy {
		return errors.Wrapf(ErrInvalidConfig, "unsupported output format %d", int(c.Format))
	}
	for i, n := range c.Norm {
		if n == 0 {
			return errors.Wrapf(ErrInvalidConfig, "norm[%d] must not be zero", i)
		}
	}
	return c.Device.Validate()
}

// ResolvePath returns the model file path, joined to dir when relative.
func (c Config) ResolvePath(dir string) string {
	path := c.Path
	if path == "" {
		path = string(c.Name) + ".onnx"
	}
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
