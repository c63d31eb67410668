// Package providers - ONNX Runtime execution providers and session options.
package providers

import (
	"runtime"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/models/model"
)

// ErrAcceleratorUnavailable is returned when a GPU was requested but the runtime has no usable
// GPU execution provider.
var ErrAcceleratorUnavailable = errors.New("accelerator unavailable")

// Backend identifies an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend uses the default CPU execution provider.
	CPUBackend Backend = "cpu"
	// CUDABackend uses NVIDIA CUDA for inference.
	CUDABackend Backend = "cuda"
)

// Options configures how a session is created.
type Options struct {
	// Backend selects the execution provider.
	Backend Backend `json:"backend" yaml:"backend"`
	// IntraOpNumThreads parallelizes execution within graph nodes. Zero lets the runtime decide.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads"`
	// InterOpNumThreads parallelizes execution across independent graph nodes.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads"`
	// CUDA holds the CUDA provider settings, used when Backend is CUDABackend.
	CUDA CUDAOptions `json:"cuda" yaml:"cuda"`
}

// ForDevice returns the default options for a model device.
//
// Arguments:
//   - device: The device requested by the model configuration.
//
// Returns:
//   - Options: CUDA options for a GPU device, CPU options otherwise.
func ForDevice(device model.Device) Options {
	opts := Options{
		Backend:           CPUBackend,
		IntraOpNumThreads: max(1, runtime.NumCPU()/2),
		InterOpNumThreads: 1,
	}
	if device.UseGPU() {
		opts.Backend = CUDABackend
		opts.CUDA = DefaultCUDAOptions()
	}
	return opts
}

// SessionOptions builds native session options. The caller must destroy the result.
//
// Returns:
//   - *ort.SessionOptions: The configured options.
//   - error: ErrAcceleratorUnavailable if the CUDA provider cannot be appended, or a runtime error.
func (o Options) SessionOptions() (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := options.SetIntraOpNumThreads(o.IntraOpNumThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(o.InterOpNumThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}

	switch o.Backend {
	case "", CPUBackend:
	case CUDABackend:
		cuda, err := o.CUDA.ToNativeProviderOptions()
		if err != nil {
			options.Destroy()
			return nil, errors.Wrapf(ErrAcceleratorUnavailable, "cuda options: %v", err)
		}
		defer cuda.Destroy()

		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			options.Destroy()
			return nil, errors.Wrapf(ErrAcceleratorUnavailable, "cuda provider: %v", err)
		}
	default:
		options.Destroy()
		return nil, errors.Errorf("unsupported execution provider %q", string(o.Backend))
	}

	return options, nil
}
