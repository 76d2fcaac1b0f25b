package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Duration }

func (c *fakeClock) now() time.Duration { return c.t }

func TestTickLogsOncePerInterval(t *testing.T) {
	clock := &fakeClock{}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond))

	frames := []time.Duration{10, 20, 30, 40} // ms
	for i, ms := range frames {
		clock.t += ms * time.Millisecond
		logged := p.Tick()
		assert.Equal(t, i == len(frames)-1, logged, "tick %d", i)
	}

	s := p.Last()
	require.Equal(t, 4, s.Frames)
	assert.InDelta(t, 40.0, s.FPS, 1e-9)
	assert.Equal(t, 10*time.Millisecond, s.MinFrameTime)
	assert.Equal(t, 40*time.Millisecond, s.MaxFrameTime)

	clock.t += 5 * time.Millisecond
	assert.False(t, p.Tick(), "a new interval starts after logging")
}

func TestDefaultInterval(t *testing.T) {
	clock := &fakeClock{}
	p := NewProfiler(WithClock(clock.now), WithInterval(-time.Second))

	clock.t = 999 * time.Millisecond
	assert.False(t, p.Tick())
	clock.t = time.Second
	assert.True(t, p.Tick())
	assert.Equal(t, 2, p.Last().Frames)
}
