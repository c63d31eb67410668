// Package benchmark - Throughput and latency measurement of the detection pipeline.
package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/profiler"
)

// ErrNoFrames is returned when a suite runs without input frames.
var ErrNoFrames = errors.New("no benchmark frames")

// PerformanceMetrics captures the results of one scenario.
type PerformanceMetrics struct {
	Scenario            Scenario      `json:"scenario"`
	Timestamp           time.Time     `json:"timestamp"`
	TotalDuration       time.Duration `json:"total_duration"`
	PreprocessDuration  time.Duration `json:"preprocess_duration"`
	InferenceDuration   time.Duration `json:"inference_duration"`
	PostProcessDuration time.Duration `json:"post_process_duration"`
	FramesPerSecond     float64       `json:"frames_per_second"`
	MemoryStats         MemoryMetrics `json:"memory_stats"`
	NumCPU              int           `json:"num_cpu"`
	DetectionCount      int           `json:"detection_count"`
	ErrorRate           float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// DetectorFactory builds an unloaded detector recording its stage timings into timings.
type DetectorFactory func(timings *profiler.Timings) *detector.Detector

// Suite manages and executes benchmark scenarios.
type Suite struct {
	mu         sync.RWMutex
	scenarios  []Scenario
	frames     []image.Image
	thresholds detector.Thresholds
	newDet     DetectorFactory
	logger     *zap.Logger
	results    []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	// Detector builds the detector for each scenario.
	Detector DetectorFactory
	// Thresholds are applied to every frame. The zero value uses the detector defaults.
	Thresholds detector.Thresholds
	// Logger receives progress messages. Nil disables logging.
	Logger *zap.Logger
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	th := args.Thresholds
	if th == (detector.Thresholds{}) {
		th = detector.DefaultThresholds()
	}
	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newDet := args.Detector
	if newDet == nil {
		newDet = func(timings *profiler.Timings) *detector.Detector {
			return detector.New(detector.WithTimings(timings), detector.WithLogger(logger))
		}
	}
	return &Suite{
		thresholds: th,
		newDet:     newDet,
		logger:     logger,
	}
}

// AddScenario adds scenarios to the suite.
func (bs *Suite) AddScenario(scenarios ...Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenarios...)
}

// AddFrames adds input frames. Each scenario resizes them to its resolution.
func (bs *Suite) AddFrames(frames ...image.Image) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.frames = append(bs.frames, frames...)
}

// RunScenario executes a single benchmark scenario.
//
// Arguments:
//   - ctx: Cancels the run between frames.
//   - scenario: The scenario to run.
//
// Returns:
//   - *PerformanceMetrics: The measured metrics.
//   - error: ErrInvalidScenario, ErrNoFrames, or a model load error.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	frames, err := bs.scaledFrames(scenario.Resolution)
	if err != nil {
		return nil, err
	}

	timings := profiler.NewTimings(scenario.Iterations)
	det := bs.newDet(timings)
	defer det.Close()

	if err := det.Load(ctx, detector.LoadArgs{Name: scenario.Model, UseGPU: scenario.UseGPU}); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := det.Detect(ctx, frames[i%len(frames)], bs.thresholds); err != nil {
			bs.logger.Debug("warmup run failed", zap.String("scenario", scenario.Name), zap.Error(err))
		}
	}
	timings.Reset()

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
		NumCPU:    runtime.NumCPU(),
	}

	failedBefore := det.FailedFrames()
	start := time.Now()
	failures := 0
	runs := 0
	for ; runs < scenario.Iterations; runs++ {
		if ctx.Err() != nil {
			break
		}
		dets, err := det.Detect(ctx, frames[runs%len(frames)], bs.thresholds)
		if err != nil {
			failures++
			continue
		}
		metrics.DetectionCount += len(dets)
	}
	metrics.TotalDuration = time.Since(start)
	failures += int(det.FailedFrames() - failedBefore)

	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	if runs > 0 && metrics.TotalDuration > 0 {
		metrics.FramesPerSecond = float64(runs) / metrics.TotalDuration.Seconds()
		metrics.ErrorRate = float64(failures) / float64(runs)
	}
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}
	for _, s := range timings.Summaries() {
		switch s.Name {
		case detector.StagePreprocess:
			metrics.PreprocessDuration = s.Mean
		case detector.StageInference:
			metrics.InferenceDuration = s.Mean
		case detector.StagePostprocess:
			metrics.PostProcessDuration = s.Mean
		}
	}

	return metrics, ctx.Err()
}

func (bs *Suite) scaledFrames(res Resolution) ([]image.Image, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	if len(bs.frames) == 0 {
		return nil, ErrNoFrames
	}
	scaled := make([]image.Image, 0, len(bs.frames))
	for _, frame := range bs.frames {
		img, err := images.Resize(frame, res.Width, res.Height)
		if err != nil {
			return nil, errors.Wrapf(err, "resizing frame to %s", res.Name)
		}
		scaled = append(scaled, img)
	}
	return scaled, nil
}

// RunAllScenarios executes every scenario. Failed scenarios are logged and skipped.
//
// Returns:
//   - []PerformanceMetrics: Metrics of the scenarios that completed.
//   - error: The context error when the run was cancelled.
func (bs *Suite) RunAllScenarios(ctx context.Context) ([]PerformanceMetrics, error) {
	bs.mu.RLock()
	scenarios := append([]Scenario(nil), bs.scenarios...)
	bs.mu.RUnlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if ctx.Err() != nil {
			return bs.Results(), ctx.Err()
		}
		if err != nil {
			bs.logger.Warn("scenario failed", zap.String("scenario", scenario.Name), zap.Error(err))
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.logger.Info("scenario completed",
			zap.String("scenario", scenario.Name),
			zap.Float64("fps", metrics.FramesPerSecond),
			zap.Duration("inference", metrics.InferenceDuration),
			zap.Int("detections", metrics.DetectionCount))
	}

	return bs.Results(), nil
}

// Results returns all benchmark results.
func (bs *Suite) Results() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]PerformanceMetrics(nil), bs.results...)
}

// SaveResults writes the results as benchmark_results_<stamp>.json and a
// benchmark_summary_<stamp>.csv summary into dir.
//
// Returns:
//   - string: The JSON file path.
//   - string: The CSV file path.
//   - error: A write error.
func (bs *Suite) SaveResults(dir string, now time.Time) (string, string, error) {
	results := bs.Results()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "failed to create output directory")
	}

	stamp := now.Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(dir, fmt.Sprintf("benchmark_results_%s.json", stamp))
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(dir, fmt.Sprintf("benchmark_summary_%s.csv", stamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "failed to save summary CSV")
	}
	return resultsFile, summaryFile, nil
}

// summaryHeader is the CSV summary column order.
var summaryHeader = []string{
	"scenario", "model", "resolution", "fps", "total_ms",
	"preprocess_ms", "inference_ms", "postprocess_ms", "alloc_mb", "detections", "error_rate",
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Scenario.Name,
			string(r.Scenario.Model),
			r.Scenario.Resolution.Name,
			strconv.FormatFloat(r.FramesPerSecond, 'f', 2, 64),
			millis(r.TotalDuration),
			millis(r.PreprocessDuration),
			millis(r.InferenceDuration),
			millis(r.PostProcessDuration),
			strconv.FormatFloat(float64(r.MemoryStats.AllocBytes)/(1024*1024), 'f', 2, 64),
			strconv.Itoa(r.DetectionCount),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Nanoseconds())/1e6, 'f', 3, 64)
}
