// Package config - YAML configuration for the detection CLI.
package config

import (
	"bytes"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-yolo/annotate"
	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
)

// ErrInvalidConfig is returned when a configuration file cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the on-disk CLI configuration.
type Config struct {
	// Model names a registered variant.
	Model model.Name `json:"model" yaml:"model"`
	// CustomModel replaces the registered variant when set.
	CustomModel *model.Config `json:"custom_model,omitempty" yaml:"custom_model,omitempty"`
	// ModelDir is the directory relative model paths are resolved against.
	ModelDir string `json:"model_dir" yaml:"model_dir"`
	// LibraryDir holds the ONNX Runtime shared library.
	LibraryDir string `json:"library_dir" yaml:"library_dir"`
	// UseGPU requests GPU inference.
	UseGPU bool `json:"use_gpu" yaml:"use_gpu"`
	// Thresholds are the per-frame detection thresholds.
	Thresholds detector.Thresholds `json:"thresholds" yaml:"thresholds"`
	// AgnosticNMS suppresses overlapping boxes across labels.
	AgnosticNMS bool `json:"agnostic_nms" yaml:"agnostic_nms"`
	// FPSOverlay draws the moving-average frame rate.
	FPSOverlay bool `json:"fps_overlay" yaml:"fps_overlay"`
	// Palette is a list of "#rrggbb" colors. Empty uses the default palette.
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty"`
	// Classes overrides the COCO class names.
	Classes []string `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Model:      model.ModelNameYOLOv13n,
		ModelDir:   "models",
		Thresholds: detector.DefaultThresholds(),
	}
}

// Load reads a YAML configuration file on top of Default. Unknown keys are rejected.
//
// Arguments:
//   - path: The file to read.
//
// Returns:
//   - Config: The validated configuration.
//   - error: A read, decode or validation error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of Default and validates the result.
//
// Example:
//
// ```go
//
//	cfg, err := config.Parse([]byte("model: yolov13s\nthresholds:\n  confidence: 0.4\n"))
//
// ```
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the model selection, thresholds and palette.
func (c Config) Validate() error {
	if c.CustomModel != nil {
		if err := c.CustomModel.Validate(); err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
	} else if _, err := models.Lookup(c.Model); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := c.Thresholds.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := c.ParsePalette(); err != nil {
		return err
	}
	return nil
}

// ParsePalette converts the hex palette entries. An empty list yields the default palette.
//
// Returns:
//   - annotate.Palette: The palette, fully opaque.
//   - error: ErrInvalidConfig naming the first bad entry.
func (c Config) ParsePalette() (annotate.Palette, error) {
	if len(c.Palette) == 0 {
		return annotate.DefaultPalette, nil
	}

	palette := make(annotate.Palette, 0, len(c.Palette))
	for _, entry := range c.Palette {
		hex := strings.TrimSpace(entry)
		if !strings.HasPrefix(hex, "#") {
			hex = "#" + hex
		}
		col, err := colorful.Hex(hex)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "palette entry %q: %v", entry, err)
		}
		r, g, b := col.RGB255()
		palette = append(palette, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return palette, nil
}

// ClassSet returns the configured class names, or COCO when none are set.
func (c Config) ClassSet() *models.ClassSet {
	if len(c.Classes) == 0 {
		return models.COCO
	}
	return models.NewClassSet(c.Classes...)
}

// LoadArgs returns the detector load arguments for the configured model.
func (c Config) LoadArgs() detector.LoadArgs {
	return detector.LoadArgs{
		Name:   c.Model,
		Config: c.CustomModel,
		UseGPU: c.UseGPU,
	}
}

// DetectorOptions returns the detector options derived from the configuration. Palette errors are
// reported by Validate; an invalid palette here falls back to the default.
func (c Config) DetectorOptions() []detector.Option {
	palette, err := c.ParsePalette()
	if err != nil {
		palette = annotate.DefaultPalette
	}
	return []detector.Option{
		detector.WithModelDir(c.ModelDir),
		detector.WithClasses(c.ClassSet()),
		detector.WithPalette(palette),
		detector.WithAgnosticNMS(c.AgnosticNMS),
		detector.WithFPSOverlay(c.FPSOverlay),
	}
}
