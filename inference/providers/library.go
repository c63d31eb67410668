package providers

import (
	"os"
	"path/filepath"
	"runtime"
)

// LibraryPathEnv overrides the ONNX Runtime shared library location.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// SharedLibPath returns the ONNX Runtime shared library for the current platform.
//
// Arguments:
//   - dir: The directory holding the platform libraries. Ignored when LibraryPathEnv is set.
//
// Returns:
//   - string: The path to the shared library.
func SharedLibPath(dir string) string {
	if p := os.Getenv(LibraryPathEnv); p != "" {
		return p
	}
	return filepath.Join(dir, libraryName(runtime.GOOS, runtime.GOARCH))
}

func libraryName(goos, goarch string) string {
	switch goos {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	}
	if goarch == "arm64" {
		return "onnxruntime_arm64.so"
	}
	return "onnxruntime.so"
}
