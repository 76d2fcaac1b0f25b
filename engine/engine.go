// Package engine drives the viewer: a single-threaded loop that polls window events, then updates
// and renders one frame per iteration.
package engine

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/pkg/errors"
)

// engine implements the Engine interface.
type engine struct {
	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilerOptions  []profiler.ProfilerOption
	profilingEnabled bool

	// minimized is set while the framebuffer has a zero extent; frames are skipped until a
	// non-zero resize arrives.
	minimized bool

	// err is the fatal error that ended the loop.
	err error

	frames uint64
}

// Engine is the main entry point for the viewer.
// It owns the loop, not the window or the renderer.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driven by the loop.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Frames returns the number of frames rendered successfully.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run registers the window callbacks and runs the loop on the calling OS thread until the
	// window closes or a fatal frame failure occurs.
	//
	// Returns:
	//   - error: the fatal frame error, or nil on a clean close
	Run() error
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{}
	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(e.profilerOptions...)
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() error {
	if e.window == nil || e.renderer == nil {
		return errors.New("engine needs a window and a renderer")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.window.SetResizeCallback(e.resize)
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.renderer.Input(keyCode)
	})
	e.window.SetUpdateCallback(e.tick)

	common.Logger().Info("entering render loop", "width", e.window.Width(), "height", e.window.Height())
	e.window.ProcessMessages()
	common.Logger().Info("render loop ended", "frames", e.frames)
	return e.err
}

// resize applies a framebuffer size change between frames.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		if !e.minimized {
			common.Logger().Debug("framebuffer is empty, pausing", "width", width, "height", height)
		}
		e.minimized = true
		return
	}
	e.minimized = false
	e.handle(e.renderer.Resize(uint32(width), uint32(height)), "resize")
}

// tick runs one iteration: Update, then Render.
func (e *engine) tick() {
	if e.minimized || e.err != nil {
		return
	}
	if !e.handle(e.renderer.Update(), "update") {
		return
	}
	if !e.handle(e.renderer.Render(), "render") {
		return
	}
	e.frames++
	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

// handle reacts to an error by its classification. It reports whether the frame went through.
func (e *engine) handle(err error, op string) bool {
	switch kind := renderer.Classify(err); kind {
	case renderer.FailureNone:
		return true
	case renderer.RecoverableFrameFailure:
		common.Logger().Warn("surface needs reconfiguring", "op", op, "error", err)
		w, h := e.window.Width(), e.window.Height()
		if w <= 0 || h <= 0 {
			return false
		}
		// one attempt per failure; a second recoverable failure waits for the next frame
		if rerr := e.renderer.Resize(uint32(w), uint32(h)); renderer.Classify(rerr) != renderer.RecoverableFrameFailure {
			e.handle(rerr, "reconfigure")
		} else {
			common.Logger().Warn("surface reconfigure failed", "error", rerr)
		}
	case renderer.TransientFrameError:
		common.Logger().Warn("frame skipped", "op", op, "error", err)
	default:
		common.Logger().Error("fatal frame failure", "op", op, "kind", kind.String(), "error", err)
		e.err = err
		e.window.RequestClose()
	}
	return false
}
