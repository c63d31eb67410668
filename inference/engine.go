// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/inference/providers"
	"github.com/nvr-ai/go-yolo/models/model"
)

// ErrAcceleratorUnavailable is returned when a GPU was requested but none can be used.
var ErrAcceleratorUnavailable = providers.ErrAcceleratorUnavailable

// ErrUnexpectedOutput is returned when the network output cannot be read as a matrix.
var ErrUnexpectedOutput = errors.New("unexpected network output")

// Input is one preprocessed frame.
type Input struct {
	// Data is the tensor data laid out according to Shape.
	Data []float32
	// Shape is the NCHW tensor shape.
	Shape []int64
}

// Output is the raw output tensor of one forward pass.
type Output struct {
	// Data is the flattened tensor data.
	Data []float32
	// Shape is the tensor shape as reported by the engine, batch dimension included.
	Shape []int64
}

// Matrix returns the output as a two-dimensional [rows, cols] tensor by dropping leading
// dimensions of size one.
//
// Returns:
//   - rows: The outer dimension.
//   - cols: The inner dimension.
//   - error: ErrUnexpectedOutput if the tensor does not have exactly two non-batch dimensions.
func (o Output) Matrix() (rows, cols int, err error) {
	shape := o.Shape
	for len(shape) > 2 && shape[0] == 1 {
		shape = shape[1:]
	}
	if len(shape) != 2 || shape[0] <= 0 || shape[1] <= 0 {
		return 0, 0, errors.Wrapf(ErrUnexpectedOutput, "shape %v", o.Shape)
	}
	return int(shape[0]), int(shape[1]), nil
}

// Engine runs the forward pass of a detection network. Implementations need not be safe for
// concurrent use.
type Engine interface {
	// Run executes the network on one input tensor.
	Run(ctx context.Context, input Input) (Output, error)
	// Close releases the engine's native resources.
	Close() error
}

// Factory creates an engine for a model configuration. Model files are resolved against dir.
type Factory func(ctx context.Context, cfg model.Config, dir string) (Engine, error)
