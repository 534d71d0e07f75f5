package parser

import (
	"sync"
	"time"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// DefaultMetricsWindow is the number of samples the recorder retains.
const DefaultMetricsWindow = 256

// Sample is one recorded parse observation.
type Sample struct {
	At         time.Time
	Duration   time.Duration
	Format     blocks.Format
	CacheHit   bool
	BlockCount int
}

// Summary is derived from the current sample window.
type Summary struct {
	Samples     int
	CacheHits   int
	HitRate     float64
	AvgDuration time.Duration
}

// Recorder keeps a bounded rolling window of parse samples. It is a shared
// mutable buffer: every operation takes the mutex, matching the discipline
// the parse cache uses.
type Recorder struct {
	mu      sync.Mutex
	window  int
	samples []Sample
	next    int
	filled  bool
}

// NewRecorder creates a recorder retaining the last window samples.
func NewRecorder(window int) *Recorder {
	if window <= 0 {
		window = DefaultMetricsWindow
	}
	return &Recorder{
		window:  window,
		samples: make([]Sample, window),
	}
}

// Record appends a sample, overwriting the oldest once the window is full.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples[r.next] = s
	r.next++
	if r.next == r.window {
		r.next = 0
		r.filled = true
	}
}

// Snapshot returns the retained samples, oldest first.
func (r *Recorder) Snapshot() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filled {
		out := make([]Sample, r.next)
		copy(out, r.samples[:r.next])
		return out
	}

	out := make([]Sample, 0, r.window)
	out = append(out, r.samples[r.next:]...)
	out = append(out, r.samples[:r.next]...)
	return out
}

// Summary derives hit rate and average duration over the current window.
func (r *Recorder) Summary() Summary {
	samples := r.Snapshot()

	sum := Summary{Samples: len(samples)}
	if len(samples) == 0 {
		return sum
	}

	var total time.Duration
	for _, s := range samples {
		total += s.Duration
		if s.CacheHit {
			sum.CacheHits++
		}
	}
	sum.HitRate = float64(sum.CacheHits) / float64(len(samples))
	sum.AvgDuration = total / time.Duration(len(samples))
	return sum
}
