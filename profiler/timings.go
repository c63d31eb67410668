package profiler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxSamples is the number of samples kept per operation.
const DefaultMaxSamples = 600

// Summary holds the statistics of one tracked operation.
type Summary struct {
	Name   string        `json:"name"   yaml:"name"`
	Count  int64         `json:"count"  yaml:"count"`
	Mean   time.Duration `json:"mean"   yaml:"mean"`
	StdDev time.Duration `json:"stddev" yaml:"stddev"`
	Min    time.Duration `json:"min"    yaml:"min"`
	Max    time.Duration `json:"max"    yaml:"max"`
}

// Timings tracks the durations of named pipeline stages. It is safe for concurrent use.
type Timings struct {
	mu         sync.Mutex
	maxSamples int
	operations map[string]*tracker
}

type tracker struct {
	samples []float64
	count   int64
	min     time.Duration
	max     time.Duration
}

// NewTimings creates a tracker keeping at most maxSamples samples per operation. Zero uses
// DefaultMaxSamples.
func NewTimings(maxSamples int) *Timings {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Timings{maxSamples: maxSamples, operations: make(map[string]*tracker)}
}

// StartOperation begins timing an operation.
//
// Arguments:
//   - name: The name of the operation to track.
//
// Returns:
//   - func(): Call when the operation completes.
func (t *Timings) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		t.Record(name, time.Since(start))
	}
}

// Record adds one duration sample for the named operation.
func (t *Timings) Record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.operations[name]
	if !ok {
		tr = &tracker{min: d, max: d}
		t.operations[name] = tr
	}

	tr.samples = append(tr.samples, float64(d))
	if len(tr.samples) > t.maxSamples {
		tr.samples = tr.samples[1:]
	}
	tr.count++
	tr.min = min(tr.min, d)
	tr.max = max(tr.max, d)
}

// Summaries returns the statistics of every operation, sorted by name.
func (t *Timings) Summaries() []Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Summary, 0, len(t.operations))
	for name, tr := range t.operations {
		mean, std := stat.MeanStdDev(tr.samples, nil)
		if len(tr.samples) < 2 {
			std = 0
		}
		out = append(out, Summary{
			Name:   name,
			Count:  tr.count,
			Mean:   time.Duration(mean),
			StdDev: time.Duration(std),
			Min:    tr.min,
			Max:    tr.max,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one debug line per operation.
func (t *Timings) Report(logger *zap.Logger) {
	for _, s := range t.Summaries() {
		logger.Debug("operation timing",
			zap.String("operation", s.Name),
			zap.Int64("count", s.Count),
			zap.Duration("mean", s.Mean),
			zap.Duration("stddev", s.StdDev),
			zap.Duration("min", s.Min),
			zap.Duration("max", s.Max))
	}
}

// Reset discards every recorded sample.
func (t *Timings) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = make(map[string]*tracker)
}
