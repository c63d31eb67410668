// Package models - registry of supported detection model variants.
package models

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/yolo"
)

// ErrUnknownModel is returned when a model name or id is not registered.
var ErrUnknownModel = errors.New("unknown model")

// unitNorm scales 8-bit pixels into [0, 1].
var unitNorm = [3]float32{1 / 255.0, 1 / 255.0, 1 / 255.0}

// variants is ordered by numeric model id.
var variants = []model.Config{
	{
		Name:       model.ModelNameYOLOv13n,
		Path:       "yolov13n.onnx",
		TargetSize: 320,
		Norm:       unitNorm,
		Format:     yolo.FormatModern,
		InputName:  "images",
		OutputName: "output0",
	},
	{
		Name:       model.ModelNameYOLOv13s,
		Path:       "yolov13s.onnx",
		TargetSize: 320,
		Norm:       unitNorm,
		Format:     yolo.FormatModern,
		InputName:  "images",
		OutputName: "output0",
	},
	{
		Name:       model.ModelNameYOLOv5n,
		Path:       "yolov5n.onnx",
		TargetSize: 320,
		Norm:       unitNorm,
		Format:     yolo.FormatLegacy,
		InputName:  "images",
		OutputName: "output0",
	},
}

// Variants returns the registered model configurations ordered by id.
func Variants() []model.Config {
	return append([]model.Config(nil), variants...)
}

// Lookup returns the configuration of the named variant.
//
// Arguments:
//   - name: The variant name, e.g. model.ModelNameYOLOv13n.
//
// Returns:
//   - model.Config: A copy of the registered configuration.
//   - error: ErrUnknownModel if the name is not registered.
//
// Example:
//
// ```go
//
//	cfg, err := Lookup(model.ModelNameYOLOv13s)
//	if err != nil {
//	    return err
//	}
//	cfg.Device = model.DeviceGPU
//
// ```
func Lookup(name model.Name) (model.Config, error) {
	for _, cfg := range variants {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	return model.Config{}, errors.Wrapf(ErrUnknownModel, "name %q", string(name))
}

// ByID returns the configuration registered under the numeric id (0 = yolov13n, 1 = yolov13s,
// 2 = yolov5n).
func ByID(id int) (model.Config, error) {
	if id < 0 || id >= len(variants) {
		return model.Config{}, errors.Wrapf(ErrUnknownModel, "id %d out of range [0, %d]", id, len(variants)-1)
	}
	return variants[id], nil
}
