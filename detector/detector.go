// Package detector - Thread-safe YOLO object detector handle.
//
// A Detector owns the loaded model configuration and inference engine. Load and per-frame
// operations serialize on one mutex, so a reload waits for an in-flight frame and the other way
// around.
package detector

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/annotate"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/model/preprocess"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/nvr-ai/go-yolo/models/yolo"
	"github.com/nvr-ai/go-yolo/profiler"
)

var (
	// ErrInvalidModel is returned by Load for unknown or invalid model selections.
	ErrInvalidModel = errors.New("invalid model")
	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrAcceleratorUnavailable is returned by Load when a GPU was requested but none can be used.
	// The detector is disabled afterwards.
	ErrAcceleratorUnavailable = inference.ErrAcceleratorUnavailable
	// ErrNotLoaded is returned by Detect when no model is loaded.
	ErrNotLoaded = errors.New("detector not loaded")
)

// Pipeline stage names recorded by WithTimings.
const (
	StagePreprocess  = "preprocess"
	StageInference   = "inference"
	StagePostprocess = "postprocess"
)

// LoadArgs selects the model to load.
type LoadArgs struct {
	// Name selects a registered variant. Ignored when Config is set.
	Name model.Name
	// Config loads a custom model configuration instead of a registered variant.
	Config *model.Config
	// UseGPU requests GPU inference.
	UseGPU bool
}

// LoadArgsFromIDs maps the numeric model id (0 = yolov13n, 1 = yolov13s, 2 = yolov5n) and device
// id (0 = CPU, 1 = GPU) to load arguments.
//
// Returns:
//   - LoadArgs: The load arguments.
//   - error: ErrInvalidModel when either id is out of range.
func LoadArgsFromIDs(modelID, deviceID int) (LoadArgs, error) {
	cfg, err := models.ByID(modelID)
	if err != nil {
		return LoadArgs{}, errors.Wrap(ErrInvalidModel, err.Error())
	}
	device, err := model.DeviceFromID(deviceID)
	if err != nil {
		return LoadArgs{}, errors.Wrap(ErrInvalidModel, err.Error())
	}
	return LoadArgs{Name: cfg.Name, UseGPU: device.UseGPU()}, nil
}

// Detector runs the detection pipeline for one loaded model.
type Detector struct {
	mu       sync.Mutex
	config   model.Config
	engine   inference.Engine
	pre      *preprocess.Preprocessor
	factory  inference.Factory
	modelDir string
	agnostic bool
	annotate annotate.Options
	timings  *profiler.Timings
	fps      *profiler.FPS
	now      func() time.Time
	logger   *zap.Logger
	failed   atomic.Uint64
}

// New creates a detector with no model loaded.
//
// Arguments:
//   - opts: Functional options.
//
// Returns:
//   - *Detector: The detector.
//
// Example:
//
// ```go
//
//	d := detector.New(
//	    detector.WithLogger(logger),
//	    detector.WithEngineFactory(inference.ORTFactory(inference.ORTArgs{LibraryDir: "./third_party"})),
//	    detector.WithModelDir("./models"),
//	)
//	defer d.Close()
//
//	if err := d.Load(ctx, detector.LoadArgs{Name: model.ModelNameYOLOv13n}); err != nil {
//	    return err
//	}
//	dets, err := d.Detect(ctx, frame, detector.DefaultThresholds())
//
// ```
func New(opts ...Option) *Detector {
	d := &Detector{
		factory: inference.ORTFactory(inference.ORTArgs{}),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load replaces the loaded model.
//
// Invalid selections leave the detector unchanged. When a GPU is requested but unavailable, the
// current model is released and the detector stays disabled until the next successful Load.
//
// Arguments:
//   - ctx: The context passed to the engine factory.
//   - args: The model selection.
//
// Returns:
//   - error: ErrInvalidModel, ErrAcceleratorUnavailable, or an engine creation error.
func (d *Detector) Load(ctx context.Context, args LoadArgs) error {
	var cfg model.Config
	if args.Config != nil {
		cfg = *args.Config
	} else {
		c, err := models.Lookup(args.Name)
		if err != nil {
			return errors.Wrap(ErrInvalidModel, err.Error())
		}
		cfg = c
	}
	cfg.Device = model.DeviceCPU
	if args.UseGPU {
		cfg.Device = model.DeviceGPU
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(ErrInvalidModel, err.Error())
	}

	pre, err := preprocess.NewPreprocessor(cfg)
	if err != nil {
		return errors.Wrap(ErrInvalidModel, err.Error())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	engine, err := d.factory(ctx, cfg, d.modelDir)
	if err != nil {
		if errors.Is(err, ErrAcceleratorUnavailable) {
			d.logger.Warn("gpu unavailable, detector disabled",
				zap.String("model", string(cfg.Name)), zap.Error(err))
			d.teardown()
		}
		return errors.Wrapf(err, "load %s", cfg.Name)
	}

	d.teardown()
	d.config = cfg
	d.engine = engine
	d.pre = pre

	d.logger.Info("model loaded",
		zap.String("model", string(cfg.Name)),
		zap.Int("target_size", cfg.TargetSize),
		zap.Stringer("format", cfg.Format),
		zap.String("device", string(cfg.Device)))
	return nil
}

// teardown releases the engine. The caller holds d.mu.
func (d *Detector) teardown() {
	if d.engine != nil {
		if err := d.engine.Close(); err != nil {
			d.logger.Warn("closing inference engine", zap.Error(err))
		}
	}
	d.engine = nil
	d.pre = nil
	d.config = model.Config{}
}

// Loaded reports whether a model is loaded.
func (d *Detector) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine != nil
}

// Config returns the loaded model configuration.
func (d *Detector) Config() (model.Config, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config, d.engine != nil
}

// Detect runs the full pipeline on one frame.
//
// Arguments:
//   - ctx: The context passed to the engine.
//   - img: The RGB frame.
//   - th: The confidence and IoU thresholds.
//
// Returns:
//   - []postprocess.Detection: Detections in the coordinates of img.Bounds(), highest score
//     first. Empty for an empty frame, a failed inference or a malformed network output.
//   - error: ErrInvalidThreshold, ErrNotLoaded, or the context error when ctx is done.
func (d *Detector) Detect(ctx context.Context, img image.Image, th Thresholds) ([]postprocess.Detection, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		d.logger.Debug("empty frame")
		return []postprocess.Detection{}, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	dets, err := d.detect(ctx, img, th)
	if err != nil {
		return nil, err
	}
	return translate(dets, img.Bounds().Min), nil
}

// FailedFrames returns the number of frames whose preprocessing or inference failed and were
// reported as having no detections.
func (d *Detector) FailedFrames() uint64 {
	return d.failed.Load()
}

// translate moves boxes from origin-relative to frame coordinates.
func translate(dets []postprocess.Detection, origin image.Point) []postprocess.Detection {
	if origin == (image.Point{}) {
		return dets
	}
	out := make([]postprocess.Detection, len(dets))
	for i, det := range dets {
		det.Box.X += float32(origin.X)
		det.Box.Y += float32(origin.Y)
		out[i] = det
	}
	return out
}

// detect runs the pipeline. Boxes are relative to the top-left corner of img. The caller holds
// d.mu.
func (d *Detector) detect(ctx context.Context, img image.Image, th Thresholds) ([]postprocess.Detection, error) {
	if d.engine == nil {
		return nil, ErrNotLoaded
	}

	done := d.stage(StagePreprocess)
	in, err := d.pre.Preprocess(img)
	done()
	if err != nil {
		if errors.Is(err, images.ErrEmptyImage) {
			d.logger.Debug("frame collapses after resize", zap.Error(err))
			return []postprocess.Detection{}, nil
		}
		d.failed.Add(1)
		d.logger.Error("preprocessing frame", zap.Error(err))
		return []postprocess.Detection{}, nil
	}
	defer d.pre.Release(in)

	done = d.stage(StageInference)
	out, err := d.engine.Run(ctx, inference.Input{Data: in.Data, Shape: in.Shape})
	done()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.failed.Add(1)
		d.logger.Error("inference failed", zap.Error(err))
		return []postprocess.Detection{}, nil
	}

	done = d.stage(StagePostprocess)
	defer done()

	rows, cols, err := out.Matrix()
	if err != nil {
		d.logger.Error("malformed network output", zap.Error(err))
		return []postprocess.Detection{}, nil
	}
	view, err := yolo.NewView(out.Data, rows, cols, d.config.Format)
	if err != nil {
		d.logger.Error("malformed network output", zap.Int64s("shape", out.Shape), zap.Error(err))
		return []postprocess.Detection{}, nil
	}

	dets, err := yolo.PostProcess(view, yolo.PostProcessArgs{
		ConfidenceThreshold: th.Confidence,
		NMS:                 postprocess.NMSConfig{IoUThreshold: th.IoU, Agnostic: d.agnostic},
		NumLabels:           d.config.NumLabels,
		Letterbox:           in.Letterbox,
	})
	if err != nil {
		d.logger.Error("decoding network output", zap.Error(err))
		return []postprocess.Detection{}, nil
	}
	return dets, nil
}

func (d *Detector) stage(name string) func() {
	if d.timings == nil {
		return func() {}
	}
	return d.timings.StartOperation(name)
}

// Draw draws detections onto canvas with the detector's palette and class names.
func (d *Detector) Draw(canvas annotate.Canvas, dets []postprocess.Detection) {
	annotate.Draw(canvas, dets, d.annotate)
}

// Render detects objects in img and draws them onto canvas, which must show the same frame with
// its top-left corner at canvas (0, 0). A detector without a model draws the "unsupported" banner
// instead. With WithFPSOverlay the frame rate is drawn once its window is full.
//
// Returns:
//   - []postprocess.Detection: The drawn detections, in the coordinates of img.Bounds().
//   - error: ErrInvalidThreshold or the context error. Nothing but the frame rate is drawn then.
func (d *Detector) Render(ctx context.Context, canvas annotate.Canvas, img image.Image, th Thresholds) ([]postprocess.Detection, error) {
	dets, err := d.render(ctx, canvas, img, th)
	if d.fps != nil {
		if avg, ok := d.fps.Tick(d.now()); ok {
			annotate.DrawFPS(canvas, avg)
		}
	}
	return dets, err
}

func (d *Detector) render(ctx context.Context, canvas annotate.Canvas, img image.Image, th Thresholds) ([]postprocess.Detection, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.engine == nil {
		annotate.DrawUnsupported(canvas)
		return []postprocess.Detection{}, nil
	}
	if img == nil || img.Bounds().Empty() {
		return []postprocess.Detection{}, nil
	}

	dets, err := d.detect(ctx, img, th)
	if err != nil {
		return nil, err
	}
	annotate.Draw(canvas, dets, d.annotate)
	return translate(dets, img.Bounds().Min), nil
}

// Close releases the loaded model. The detector can be loaded again afterwards.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.engine != nil {
		err = d.engine.Close()
	}
	d.engine = nil
	d.pre = nil
	d.config = model.Config{}
	return err
}
