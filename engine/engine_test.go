package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/recording"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWindow runs a fixed number of iterations. events[i] runs before the update callback of
// iteration i, the way polled events do.
type scriptedWindow struct {
	width, height int
	iterations    int
	events        map[int]func(w *scriptedWindow)

	running  bool
	onUpdate func()
	onResize func(width, height int)
	onKey    func(keyCode uint32)
}

func newScriptedWindow(iterations int) *scriptedWindow {
	return &scriptedWindow{width: 800, height: 600, iterations: iterations, events: map[int]func(*scriptedWindow){}, running: true}
}

func (w *scriptedWindow) resize(width, height int) {
	w.width, w.height = width, height
	w.onResize(width, height)
}

func (w *scriptedWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *scriptedWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *scriptedWindow) SetKeyDownCallback(cb func(keyCode uint32)) { w.onKey = cb }
func (w *scriptedWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *scriptedWindow) IsRunning() bool { return w.running }
func (w *scriptedWindow) RequestClose() { w.running = false }
func (w *scriptedWindow) Close() error { w.running = false; return nil }
func (w *scriptedWindow) Width() int { return w.width }
func (w *scriptedWindow) Height() int { return w.height }

func (w *scriptedWindow) ProcessMessages() {
	for i := 0; i < w.iterations && w.running; i++ {
		if ev, ok := w.events[i]; ok {
			ev(w)
		}
		if !w.running {
			return
		}
		w.onUpdate()
	}
}

func model() *common.ImportedModel {
	n := [3]float32{0, 0, 1}
	return &common.ImportedModel{
		Meshes: []common.ImportedMesh{{
			Name: "triangle",
			Vertices: []common.ImportedVertex{
				{Position: [3]float32{-1, -1, 0}, Normal: n},
				{Position: [3]float32{1, -1, 0}, Normal: n},
				{Position: [3]float32{0, 1, 0}, Normal: n},
			},
			Indices:       []uint32{0, 1, 2},
			MaterialIndex: 0,
		}},
		Materials: []common.ImportedMaterial{{Name: "flat", Diffuse: [3]float32{1, 1, 1}}},
	}
}

func setup(t *testing.T, iterations int) (*recording.Device, *scriptedWindow, renderer.Renderer, Engine) {
	t.Helper()
	dev := recording.NewDevice()
	r, err := renderer.NewRenderer(dev, 800, 600, model())
	require.NoError(t, err)
	w := newScriptedWindow(iterations)
	return dev, w, r, NewEngine(WithWindow(w), WithRenderer(r), WithProfiling(true))
}

func TestRunRendersEveryIteration(t *testing.T) {
	dev, _, _, e := setup(t, 5)
	require.NoError(t, e.Run())
	assert.Equal(t, uint64(5), e.Frames())
	assert.Len(t, dev.Frames, 5)
}

func TestResizeBetweenFrames(t *testing.T) {
	dev, w, r, e := setup(t, 4)
	w.events[2] = func(w *scriptedWindow) { w.resize(1024, 768) }

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(1), r.Generation())
	assert.Equal(t, uint32(1024), dev.LastFrame().Surface.Width)
	assert.Equal(t, uint32(800), dev.Frames[1].Surface.Width)
}

func TestMinimizedSkipsFrames(t *testing.T) {
	dev, w, r, e := setup(t, 6)
	w.events[1] = func(w *scriptedWindow) { w.resize(0, 0) }
	w.events[4] = func(w *scriptedWindow) { w.resize(640, 480) }

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.Frames())
	assert.Len(t, dev.Frames, 3)
	assert.Equal(t, uint64(1), r.Generation())
}

func TestRecoverableFailureReconfigures(t *testing.T) {
	dev, _, r, e := setup(t, 3)
	dev.FailNext(recording.OpAcquireFrame, backend.ErrSurfaceLost)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.Frames())
	assert.Equal(t, uint64(1), r.Generation())
	require.GreaterOrEqual(t, len(dev.SurfaceConfigs), 2)
	assert.Equal(t, dev.SurfaceConfigs[0], dev.SurfaceConfigs[len(dev.SurfaceConfigs)-1])
}

func TestTransientFailureSkipsFrame(t *testing.T) {
	dev, _, _, e := setup(t, 3)
	dev.FailNext(recording.OpAcquireFrame, backend.ErrSurfaceTimeout)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.Frames())
}

func TestFatalFailureEndsLoop(t *testing.T) {
	dev, w, _, e := setup(t, 10)
	dev.FailNext(recording.OpAcquireFrame, nil)
	dev.FailNext(recording.OpAcquireFrame, backend.ErrDeviceLost)

	err := e.Run()
	assert.True(t, errors.Is(err, backend.ErrDeviceLost))
	assert.Equal(t, renderer.FatalFrameFailure, renderer.Classify(err))
	assert.Equal(t, uint64(1), e.Frames())
	assert.False(t, w.running)
}

func TestKeysReachRenderer(t *testing.T) {
	_, w, _, e := setup(t, 1)
	w.events[0] = func(w *scriptedWindow) { w.onKey(common.KeySpace) }
	require.NoError(t, e.Run())
	assert.Equal(t, uint64(1), e.Frames())
}

func TestRunNeedsCollaborators(t *testing.T) {
	assert.Error(t, NewEngine().Run())
}
