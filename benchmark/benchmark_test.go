package benchmark

import (
	"context"
	"encoding/csv"
	"image"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/profiler"
)

// mockEngine returns a single centered detection, or err.
type mockEngine struct {
	err  error
	runs int
}

func (m *mockEngine) Run(_ context.Context, _ inference.Input) (inference.Output, error) {
	m.runs++
	if m.err != nil {
		return inference.Output{}, m.err
	}
	// One anchor, one class: cx, cy, w, h, score.
	return inference.Output{Data: []float32{160, 120, 50, 50, 0.9}, Shape: []int64{1, 5, 1}}, nil
}

func (m *mockEngine) Close() error { return nil }

func newMockSuite(engine *mockEngine) *Suite {
	factory := func(context.Context, model.Config, string) (inference.Engine, error) {
		return engine, nil
	}
	return NewSuite(NewSuiteArgs{
		Detector: func(timings *profiler.Timings) *detector.Detector {
			return detector.New(detector.WithTimings(timings), detector.WithEngineFactory(factory))
		},
	})
}

func grayFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	return img
}

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("test_scenario").
		WithModel(model.ModelNameYOLOv5n).
		WithGPU(true).
		WithResolution(1280, 720).
		WithIterations(50).
		WithWarmupRuns(5).
		Build()

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, model.ModelNameYOLOv5n, scenario.Model)
	assert.True(t, scenario.UseGPU)
	assert.Equal(t, Resolution{Width: 1280, Height: 720, Name: "1280x720"}, scenario.Resolution)
	assert.Equal(t, 50, scenario.Iterations)
	assert.Equal(t, 5, scenario.WarmupRuns)
	assert.NoError(t, scenario.Validate())
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{name: "unknown model", mutate: func(s *Scenario) { s.Model = "yolov99" }},
		{name: "zero width", mutate: func(s *Scenario) { s.Resolution.Width = 0 }},
		{name: "no iterations", mutate: func(s *Scenario) { s.Iterations = 0 }},
		{name: "negative warmup", mutate: func(s *Scenario) { s.WarmupRuns = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := NewScenarioBuilder(tt.name).Build()
			tt.mutate(&scenario)
			assert.ErrorIs(t, scenario.Validate(), ErrInvalidScenario)
		})
	}
}

func TestSweeps(t *testing.T) {
	res := ResolutionSweep(model.ModelNameYOLOv13s, CommonResolutions, 10, 2)
	require.Len(t, res, len(CommonResolutions))
	assert.Equal(t, "yolov13s_640x480", res[0].Name)
	assert.Equal(t, 10, res[0].Iterations)

	byModel := ModelSweep(NewResolution(320, 240), 10, 2)
	require.Len(t, byModel, 3)
	assert.Equal(t, model.ModelNameYOLOv5n, byModel[2].Model)
}

func TestRunScenario(t *testing.T) {
	engine := &mockEngine{}
	suite := newMockSuite(engine)
	suite.AddFrames(grayFrame(640, 480), grayFrame(320, 240))

	scenario := NewScenarioBuilder("quick").WithResolution(640, 480).WithIterations(4).WithWarmupRuns(2).Build()
	metrics, err := suite.RunScenario(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, 6, engine.runs)
	assert.Equal(t, 4, metrics.DetectionCount)
	assert.Zero(t, metrics.ErrorRate)
	assert.Greater(t, metrics.FramesPerSecond, 0.0)
	assert.Equal(t, scenario, metrics.Scenario)
	assert.Positive(t, metrics.NumCPU)
}

func TestRunScenario_EngineErrors(t *testing.T) {
	suite := newMockSuite(&mockEngine{err: errors.New("device lost")})
	suite.AddFrames(grayFrame(64, 48))

	metrics, err := suite.RunScenario(context.Background(), NewScenarioBuilder("failing").WithIterations(3).WithWarmupRuns(0).Build())
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics.ErrorRate)
	assert.Zero(t, metrics.DetectionCount)
}

func TestRunScenario_NoFrames(t *testing.T) {
	suite := newMockSuite(&mockEngine{})
	_, err := suite.RunScenario(context.Background(), NewScenarioBuilder("empty").Build())
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestRunAllScenarios_SkipsFailures(t *testing.T) {
	suite := newMockSuite(&mockEngine{})
	suite.AddFrames(grayFrame(64, 48))
	suite.AddScenario(
		NewScenarioBuilder("ok").WithIterations(2).WithWarmupRuns(0).Build(),
		NewScenarioBuilder("bad").WithModel("yolov99").Build(),
	)

	results, err := suite.RunAllScenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Scenario.Name)
}

func TestRunAllScenarios_Cancelled(t *testing.T) {
	suite := newMockSuite(&mockEngine{})
	suite.AddFrames(grayFrame(64, 48))
	suite.AddScenario(NewScenarioBuilder("ok").WithIterations(2).Build())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := suite.RunAllScenarios(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveResults(t *testing.T) {
	suite := newMockSuite(&mockEngine{})
	suite.AddFrames(grayFrame(64, 48))
	suite.AddScenario(ModelSweep(NewResolution(64, 48), 2, 0)...)

	results, err := suite.RunAllScenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	dir := t.TempDir()
	stamp := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	jsonPath, csvPath, err := suite.SaveResults(dir, stamp)
	require.NoError(t, err)
	assert.Contains(t, jsonPath, "benchmark_results_2026-10-17_09-30-00.json")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model": "yolov13s"`)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, "yolov13n_64x48", rows[1][0])
	assert.Equal(t, "2", rows[1][9])
}
