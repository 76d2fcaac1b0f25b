// Package profiler logs frame rate, frame time and memory statistics at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/loov/hrtime"
)

// Stats is one interval's summary.
type Stats struct {
	Frames       int
	FPS          float64
	MinFrameTime time.Duration
	MaxFrameTime time.Duration
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	MaxPauseUs   uint64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
type Profiler struct {
	// now reads a monotonic high-resolution clock.
	now func() time.Duration

	updateInterval time.Duration
	frameCount     int
	intervalStart  time.Duration
	lastFrame      time.Duration
	minFrame       time.Duration
	maxFrame       time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	last Stats
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values keep the default of one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the hrtime clock.
func WithClock(now func() time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            hrtime.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.intervalStart = p.now()
	p.lastFrame = p.intervalStart
	return p
}

// Tick should be called once per frame. When the update interval has elapsed it logs the
// interval's statistics at debug level and starts a new interval.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := p.now()
	frame := now - p.lastFrame
	p.lastFrame = now

	if p.frameCount == 0 || frame < p.minFrame {
		p.minFrame = frame
	}
	if frame > p.maxFrame {
		p.maxFrame = frame
	}
	p.frameCount++

	elapsed := now - p.intervalStart
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		Frames:       p.frameCount,
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		MinFrameTime: p.minFrame,
		MaxFrameTime: p.maxFrame,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses
	start := p.lastGCCount
	if s.GCCount-start > 256 {
		start = s.GCCount - 256
	}
	for i := start; i < s.GCCount; i++ {
		if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
			s.MaxPauseUs = pause
		}
	}

	common.Logger().Debug("profiler",
		"fps", s.FPS,
		"frame_min", s.MinFrameTime,
		"frame_max", s.MaxFrameTime,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_max_pause_us", s.MaxPauseUs,
	)

	p.last = s
	p.frameCount = 0
	p.maxFrame = 0
	p.intervalStart = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged interval.
func (p *Profiler) Last() Stats {
	return p.last
}
