package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/inference/providers"
	"github.com/nvr-ai/go-yolo/models/model"
)

type stubSession struct {
	destroyed bool
}

func (s *stubSession) Run(_, _ []ort.Value) error { return nil }

func (s *stubSession) Destroy() error {
	s.destroyed = true
	return nil
}

// opener records the arguments it was called with and returns session or err.
type opener struct {
	session *stubSession
	err     error

	path    string
	inputs  []string
	outputs []string
	opts    providers.Options
}

func (o *opener) open(path string, inputs, outputs []string, opts providers.Options) (ortSession, error) {
	o.path, o.inputs, o.outputs, o.opts = path, inputs, outputs, opts
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func writeModel(t *testing.T) (string, model.Config) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yolov13n.onnx"), []byte("onnx"), 0o644))
	return dir, model.Config{Name: model.ModelNameYOLOv13n}
}

func TestNewEngine(t *testing.T) {
	dir, cfg := writeModel(t)
	o := &opener{session: &stubSession{}}

	engine, err := newEngine(cfg, dir, ORTArgs{}, o.open)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "yolov13n.onnx"), o.path)
	assert.Equal(t, []string{"images"}, o.inputs)
	assert.Equal(t, []string{"output0"}, o.outputs)
	assert.Equal(t, providers.CPUBackend, engine.Backend())

	require.NoError(t, engine.Close())
	assert.True(t, o.session.destroyed)
	assert.NoError(t, engine.Close())
}

func TestNewEngine_SessionErrors(t *testing.T) {
	tests := []struct {
		name        string
		device      model.Device
		openErr     error
		missing     bool
		unavailable bool
	}{
		{name: "cuda session fails", device: model.DeviceGPU, openErr: errors.New("CUDA failure 35"), unavailable: true},
		{
			name:        "cuda provider fails",
			device:      model.DeviceGPU,
			openErr:     errors.Wrap(ErrAcceleratorUnavailable, "cuda provider"),
			unavailable: true,
		},
		{name: "cpu session fails", device: model.DeviceCPU, openErr: errors.New("invalid protobuf")},
		{name: "missing model on gpu", device: model.DeviceGPU, missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, cfg := writeModel(t)
			cfg.Device = tt.device
			if tt.missing {
				cfg.Path = "absent.onnx"
			}
			o := &opener{err: tt.openErr}

			engine, err := newEngine(cfg, dir, ORTArgs{}, o.open)
			require.Error(t, err)
			assert.Nil(t, engine)

			if tt.unavailable {
				assert.ErrorIs(t, err, ErrAcceleratorUnavailable)
				assert.Equal(t, providers.CUDABackend, o.opts.Backend)
			} else {
				assert.NotErrorIs(t, err, ErrAcceleratorUnavailable)
			}
			if tt.missing {
				assert.Empty(t, o.path)
			}
		})
	}
}
