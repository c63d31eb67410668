package inference

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/inference/providers"
	"github.com/nvr-ai/go-yolo/models/model"
)

var (
	environmentMu   sync.Mutex
	environmentPath string
)

// initEnvironment loads the ONNX Runtime shared library once per process.
func initEnvironment(libPath string) error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if ort.IsInitialized() {
		if environmentPath != libPath {
			return errors.Errorf("ORT environment already initialized from %s", environmentPath)
		}
		return nil
	}

	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}
	environmentPath = libPath
	return nil
}

// ORTArgs configures an ONNX Runtime engine.
type ORTArgs struct {
	// LibraryDir holds the ONNX Runtime shared library. See providers.SharedLibPath.
	LibraryDir string
	// Providers overrides the execution provider options derived from the model device.
	Providers *providers.Options
	// Logger receives session lifecycle messages. Nil disables logging.
	Logger *zap.Logger
}

// ortSession is the part of an ONNX Runtime session an engine uses.
type ortSession interface {
	Run(inputs, outputs []ort.Value) error
	Destroy() error
}

// sessionOpener creates a session for the model file at path.
type sessionOpener func(path string, inputs, outputs []string, opts providers.Options) (ortSession, error)

// openORTSession creates a dynamic session with the execution providers of opts.
func openORTSession(path string, inputs, outputs []string, opts providers.Options) (ortSession, error) {
	options, err := opts.SessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(path, inputs, outputs, options)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ORTEngine runs a network with ONNX Runtime.
type ORTEngine struct {
	mu      sync.Mutex
	session ortSession
	backend providers.Backend
	logger  *zap.Logger
}

// NewORTEngine loads the model file of cfg into an ONNX Runtime session.
//
// Arguments:
//   - cfg: The model configuration, providing path, node names and device.
//   - dir: The model directory relative paths are resolved against.
//   - args: Runtime library location and provider overrides.
//
// Returns:
//   - *ORTEngine: The engine.
//   - error: ErrAcceleratorUnavailable when a GPU was requested and the CUDA provider or a CUDA
//     session cannot be created, or a runtime error.
//
// Example:
//
// ```go
//
//	cfg, _ := models.Lookup(model.ModelNameYOLOv13n)
//	engine, err := NewORTEngine(cfg, "./models", ORTArgs{LibraryDir: "./third_party"})
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
// ```
func NewORTEngine(cfg model.Config, dir string, args ORTArgs) (*ORTEngine, error) {
	if err := initEnvironment(providers.SharedLibPath(args.LibraryDir)); err != nil {
		return nil, err
	}
	return newEngine(cfg, dir, args, openORTSession)
}

func newEngine(cfg model.Config, dir string, args ORTArgs, open sessionOpener) (*ORTEngine, error) {
	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := providers.ForDevice(cfg.Device)
	if args.Providers != nil {
		opts = *args.Providers
	}

	inputName, outputName := cfg.InputName, cfg.OutputName
	if inputName == "" {
		inputName = "images"
	}
	if outputName == "" {
		outputName = "output0"
	}

	path := cfg.ResolvePath(dir)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "model file %s", path)
	}

	session, err := open(path, []string{inputName}, []string{outputName}, opts)
	if err != nil {
		// A readable model that fails to load under CUDA means the GPU cannot serve it.
		if opts.Backend == providers.CUDABackend && !errors.Is(err, ErrAcceleratorUnavailable) {
			return nil, errors.Wrapf(ErrAcceleratorUnavailable, "cuda session for %s: %v", path, err)
		}
		return nil, errors.Wrapf(err, "error creating ORT session for %s", path)
	}

	logger.Info("onnxruntime session created",
		zap.String("model", string(cfg.Name)),
		zap.String("path", path),
		zap.String("backend", string(opts.Backend)))

	return &ORTEngine{session: session, backend: opts.Backend, logger: logger}, nil
}

// Backend returns the execution provider the session runs on.
func (e *ORTEngine) Backend() providers.Backend {
	return e.backend
}

// Run executes the network on one input tensor.
func (e *ORTEngine) Run(ctx context.Context, input Input) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return Output{}, errors.New("ORT session is closed")
	}

	in, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Data)
	if err != nil {
		return Output{}, errors.Wrap(err, "error creating input tensor")
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{in}, outputs); err != nil {
		return Output{}, errors.Wrap(err, "error running ORT session")
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Output{}, errors.Wrapf(ErrUnexpectedOutput, "output type %T", outputs[0])
	}

	return Output{
		Data:  append([]float32(nil), tensor.GetData()...),
		Shape: append([]int64(nil), tensor.GetShape()...),
	}, nil
}

// Close destroys the session.
func (e *ORTEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	if err != nil {
		return errors.Wrap(err, "error destroying ORT session")
	}
	return nil
}

// ORTFactory returns a Factory creating ONNX Runtime engines.
func ORTFactory(args ORTArgs) Factory {
	return func(_ context.Context, cfg model.Config, dir string) (Engine, error) {
		return NewORTEngine(cfg, dir, args)
	}
}
