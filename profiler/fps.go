// Package profiler - Frame rate and stage timing measurements.
package profiler

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FPSWindow is the number of frame intervals averaged by FPS.
const FPSWindow = 10

// FPS is a moving-average frame rate counter over the last FPSWindow frame intervals.
type FPS struct {
	mu      sync.Mutex
	last    time.Time
	history []float64
	next    int
}

// NewFPS creates an empty frame rate counter.
func NewFPS() *FPS {
	return &FPS{history: make([]float64, 0, FPSWindow)}
}

// Tick records a frame rendered at now.
//
// The first tick only starts the clock. Non-positive intervals are dropped.
//
// Arguments:
//   - now: The frame timestamp.
//
// Returns:
//   - avg: The mean frames per second over the window.
//   - ok: False until FPSWindow intervals have been recorded.
//
// @example
//
//	fps := NewFPS()
//	for frame := range frames {
//	    if avg, ok := fps.Tick(time.Now()); ok {
//	        annotate.DrawFPS(canvas, avg)
//	    }
//	}
func (f *FPS) Tick(now time.Time) (avg float64, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last.IsZero() {
		f.last = now
		return 0, false
	}

	elapsed := now.Sub(f.last)
	f.last = now
	if elapsed > 0 {
		rate := float64(time.Second) / float64(elapsed)
		if len(f.history) < FPSWindow {
			f.history = append(f.history, rate)
		} else {
			f.history[f.next] = rate
		}
		f.next = (f.next + 1) % FPSWindow
	}

	if len(f.history) < FPSWindow {
		return 0, false
	}
	return stat.Mean(f.history, nil), true
}

// Reset clears the window and the clock.
func (f *FPS) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.last = time.Time{}
	f.history = f.history[:0]
	f.next = 0
}
