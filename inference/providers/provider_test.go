package providers

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvr-ai/go-yolo/models/model"
)

func TestForDevice(t *testing.T) {
	tests := []struct {
		device   model.Device
		expected Backend
	}{
		{device: model.DeviceCPU, expected: CPUBackend},
		{device: "", expected: CPUBackend},
		{device: model.DeviceGPU, expected: CUDABackend},
		{device: "GPU", expected: CUDABackend},
	}

	for _, tt := range tests {
		t.Run(string(tt.device), func(t *testing.T) {
			opts := ForDevice(tt.device)
			assert.Equal(t, tt.expected, opts.Backend)
			assert.GreaterOrEqual(t, opts.IntraOpNumThreads, 1)
		})
	}
}

func TestCUDAOptions_Values(t *testing.T) {
	values := DefaultCUDAOptions().Values()
	assert.Equal(t, "0", values["device_id"])
	assert.Equal(t, "1", values["do_copy_in_default_stream"])
	assert.Equal(t, "HEURISTIC", values["cudnn_conv_algo_search"])
	assert.NotContains(t, values, "gpu_mem_limit")

	values = CUDAOptions{DeviceID: 1, GPUMemLimit: 2 << 30, UseTF32: true}.Values()
	assert.Equal(t, "1", values["device_id"])
	assert.Equal(t, "2147483648", values["gpu_mem_limit"])
	assert.Equal(t, "1", values["use_tf32"])
	assert.NotContains(t, values, "arena_extend_strategy")
}

func TestSharedLibPath(t *testing.T) {
	t.Setenv(LibraryPathEnv, "")
	assert.Equal(t, filepath.Join("lib", libraryName(runtime.GOOS, runtime.GOARCH)), SharedLibPath("lib"))
	assert.Equal(t, "onnxruntime.so", libraryName("linux", "amd64"))
	assert.Equal(t, "onnxruntime_arm64.so", libraryName("linux", "arm64"))
	assert.Equal(t, "onnxruntime.dll", libraryName("windows", "amd64"))
	assert.Equal(t, "libonnxruntime.dylib", libraryName("darwin", "arm64"))

	t.Setenv(LibraryPathEnv, "/opt/ort/libonnxruntime.so")
	assert.Equal(t, "/opt/ort/libonnxruntime.so", SharedLibPath("lib"))
}
