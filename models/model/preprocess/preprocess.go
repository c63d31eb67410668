// Package preprocess - Converts camera frames into network input tensors.
package preprocess

import (
	"image"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/model"
)

// PadValue is the 8-bit value written into letterbox padding before normalization.
const PadValue = 114

// Result contains the preprocessed tensor and the letterbox needed to map detections back.
type Result struct {
	// Data is the normalized RGB tensor in CHW order.
	Data []float32
	// Shape is the NCHW tensor shape, [1, 3, height, width].
	Shape []int64
	// Letterbox records the resize and padding that produced Data.
	Letterbox images.Letterbox
}

// Preprocessor letterboxes frames for one model configuration and recycles tensor buffers.
type Preprocessor struct {
	config model.Config
	pool   sync.Pool
}

// NewPreprocessor creates a preprocessor for the given model configuration.
//
// Arguments:
//   - config: The model configuration providing target size, mean and norm.
//
// Returns:
//   - *Preprocessor: The preprocessor.
//   - error: An error if the configuration is invalid.
//
// @example
//
//	cfg, _ := models.Lookup(model.ModelNameYOLOv13n)
//	p, err := NewPreprocessor(cfg)
//	if err != nil {
//	    return err
//	}
//	res, err := p.Preprocess(frame)
func NewPreprocessor(config model.Config) (*Preprocessor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Preprocessor{config: config}, nil
}

// Preprocess letterboxes img into a tensor. Release the result once the engine is done with it.
func (p *Preprocessor) Preprocess(img image.Image) (*Result, error) {
	size := 3 * images.AlignToStride(p.config.TargetSize) * images.AlignToStride(p.config.TargetSize)
	var buf []float32
	if v, ok := p.pool.Get().(*[]float32); ok && cap(*v) >= size {
		buf = (*v)[:size]
	} else {
		buf = make([]float32, size)
	}
	return letterbox(img, p.config, buf)
}

// Release returns the result's tensor buffer to the pool.
func (p *Preprocessor) Release(res *Result) {
	if res == nil || res.Data == nil {
		return
	}
	data := res.Data
	res.Data = nil
	p.pool.Put(&data)
}

// Letterbox resizes img so that its longer side equals the configured target size, pads both
// sides up to a multiple of images.Stride with PadValue and normalizes every channel as
// (value - mean) * norm.
//
// Arguments:
//   - img: The RGB source frame.
//   - config: The model configuration.
//
// Returns:
//   - *Result: The CHW tensor and letterbox bookkeeping.
//   - error: images.ErrEmptyImage for an empty frame, or a configuration error.
//
// @example
//
//	res, err := Letterbox(frame, cfg)
//	if err != nil {
//	    return err
//	}
//	out, err := engine.Run(ctx, inference.Input{Data: res.Data, Shape: res.Shape})
func Letterbox(img image.Image, config model.Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return letterbox(img, config, nil)
}

func letterbox(img image.Image, config model.Config, buf []float32) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, images.ErrEmptyImage
	}

	bounds := img.Bounds()
	lb := images.NewLetterbox(bounds.Dx(), bounds.Dy(), config.TargetSize)
	if lb.ResizedWidth <= 0 || lb.ResizedHeight <= 0 {
		return nil, errors.Wrapf(images.ErrEmptyImage, "frame %dx%d collapses at target %d",
			bounds.Dx(), bounds.Dy(), config.TargetSize)
	}

	resized, err := images.Resize(img, lb.ResizedWidth, lb.ResizedHeight)
	if err != nil {
		return nil, errors.Wrap(err, "resize failed")
	}

	w, h := lb.InputWidth(), lb.InputHeight()
	plane := w * h
	if cap(buf) < 3*plane {
		buf = make([]float32, 3*plane)
	}
	data := buf[:3*plane]

	var pad [3]float32
	for c := range pad {
		pad[c] = (PadValue - config.Mean[c]) * config.Norm[c]
	}

	left, top := lb.Left(), lb.Top()
	rb := resized.Bounds()
	for y := 0; y < h; y++ {
		sy := y - top
		for x := 0; x < w; x++ {
			i := y*w + x
			sx := x - left
			if sx < 0 || sy < 0 || sx >= lb.ResizedWidth || sy >= lb.ResizedHeight {
				data[i], data[plane+i], data[2*plane+i] = pad[0], pad[1], pad[2]
				continue
			}
			r, g, b := images.RGB(resized, rb.Min.X+sx, rb.Min.Y+sy)
			data[i] = (float32(r) - config.Mean[0]) * config.Norm[0]
			data[plane+i] = (float32(g) - config.Mean[1]) * config.Norm[1]
			data[2*plane+i] = (float32(b) - config.Mean[2]) * config.Norm[2]
		}
	}

	return &Result{
		Data:      data,
		Shape:     []int64{1, 3, int64(h), int64(w)},
		Letterbox: lb,
	}, nil
}
