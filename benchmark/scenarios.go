package benchmark

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
)

// ErrInvalidScenario is returned for scenarios that cannot be run.
var ErrInvalidScenario = errors.New("invalid benchmark scenario")

// Resolution represents image dimensions for benchmarking.
type Resolution struct {
	Width  int    `json:"width"  yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Name   string `json:"name"   yaml:"name"`
}

// NewResolution names a resolution "<w>x<h>".
func NewResolution(width, height int) Resolution {
	return Resolution{Width: width, Height: height, Name: fmt.Sprintf("%dx%d", width, height)}
}

// CommonResolutions are typical camera frame sizes.
var CommonResolutions = []Resolution{
	NewResolution(640, 480),
	NewResolution(1280, 720),
	NewResolution(1920, 1080),
}

// Scenario defines a specific test configuration.
type Scenario struct {
	Name       string     `json:"name"        yaml:"name"`
	Model      model.Name `json:"model"       yaml:"model"`
	UseGPU     bool       `json:"use_gpu"     yaml:"use_gpu"`
	Resolution Resolution `json:"resolution"  yaml:"resolution"`
	Iterations int        `json:"iterations"  yaml:"iterations"`
	WarmupRuns int        `json:"warmup_runs" yaml:"warmup_runs"`
}

// Validate checks the model name, resolution and run counts.
func (s Scenario) Validate() error {
	if _, err := models.Lookup(s.Model); err != nil {
		return errors.Wrapf(ErrInvalidScenario, "%s: %v", s.Name, err)
	}
	if s.Resolution.Width <= 0 || s.Resolution.Height <= 0 {
		return errors.Wrapf(ErrInvalidScenario, "%s: resolution %dx%d", s.Name, s.Resolution.Width, s.Resolution.Height)
	}
	if s.Iterations <= 0 || s.WarmupRuns < 0 {
		return errors.Wrapf(ErrInvalidScenario, "%s: %d iterations, %d warmup runs", s.Name, s.Iterations, s.WarmupRuns)
	}
	return nil
}

// ScenarioBuilder helps build test scenarios with fluent API.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder starts a scenario with 100 iterations and 10 warmup runs on yolov13n.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Model:      model.ModelNameYOLOv13n,
			Resolution: NewResolution(640, 480),
			Iterations: 100,
			WarmupRuns: 10,
		},
	}
}

// WithModel sets the model variant.
func (sb *ScenarioBuilder) WithModel(name model.Name) *ScenarioBuilder {
	sb.scenario.Model = name
	return sb
}

// WithGPU requests GPU inference.
func (sb *ScenarioBuilder) WithGPU(useGPU bool) *ScenarioBuilder {
	sb.scenario.UseGPU = useGPU
	return sb
}

// WithResolution sets the frame size.
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = NewResolution(width, height)
	return sb
}

// WithIterations sets the number of timed runs.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of untimed runs.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ResolutionSweep returns one scenario per resolution for the given model.
//
// Arguments:
//   - name: The model variant.
//   - resolutions: The frame sizes to test.
//   - iterations: Timed runs per scenario.
//   - warmups: Untimed runs per scenario.
//
// Returns:
//   - []Scenario: Scenarios named "<model>_<resolution>".
func ResolutionSweep(name model.Name, resolutions []Resolution, iterations, warmups int) []Scenario {
	scenarios := make([]Scenario, 0, len(resolutions))
	for _, res := range resolutions {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("%s_%s", name, res.Name)).
			WithModel(name).
			WithResolution(res.Width, res.Height).
			WithIterations(iterations).
			WithWarmupRuns(warmups).
			Build())
	}
	return scenarios
}

// ModelSweep returns one scenario per registered variant at a single resolution.
func ModelSweep(res Resolution, iterations, warmups int) []Scenario {
	variants := models.Variants()
	scenarios := make([]Scenario, 0, len(variants))
	for _, v := range variants {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("%s_%s", v.Name, res.Name)).
			WithModel(v.Name).
			WithResolution(res.Width, res.Height).
			WithIterations(iterations).
			WithWarmupRuns(warmups).
			Build())
	}
	return scenarios
}
