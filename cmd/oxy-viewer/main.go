// Command oxy-viewer opens a window and draws one textured, lit model with WebGPU.
//
// Configuration is read from oxy.yaml in the working directory, or from the file named by
// OXY_CONFIG. Without a config file the bundled cube is shown.
package main

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/webgpu"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

func main() {
	if err := run(); err != nil {
		common.Logger().Error("oxy-viewer failed", "kind", renderer.Classify(err).String(), "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config + logging ────────────────────────────────────────────────
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return renderer.WrapStartup(err, "load config")
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	common.Logger().Info("configuration loaded", "path", path, "model", cfg.Assets.Model, "present_mode", cfg.PresentMode)

	// ── Assets ──────────────────────────────────────────────────────────
	// Decoding happens before any window or GPU object exists.
	var fsys fs.FS = assets.FS()
	if cfg.Assets.Root != "" {
		fsys = os.DirFS(cfg.Assets.Root)
	}
	model, err := loader.NewLoader(fsys, loader.WithWorkers(cfg.Loader.Workers)).LoadModel(cfg.Assets.Model)
	if err != nil {
		return renderer.WrapStartup(err, "load model")
	}

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return renderer.WrapStartup(err, "open window")
	}
	defer win.Close()

	// ── Device + Renderer ───────────────────────────────────────────────
	device, err := webgpu.NewDevice(win.SurfaceDescriptor(), webgpu.WithLabel("oxy-viewer"))
	if err != nil {
		return renderer.WrapStartup(err, "create device")
	}

	c := cfg.Camera
	r, err := renderer.NewRenderer(device, uint32(win.Width()), uint32(win.Height()), model,
		renderer.WithPresentMode(cfg.Present()),
		renderer.WithClearColor(cfg.Clear()),
		renderer.WithCameraOptions(
			camera.WithEye(c.Eye[0], c.Eye[1], c.Eye[2]),
			camera.WithCenter(c.Center[0], c.Center[1], c.Center[2]),
			camera.WithUp(c.Up[0], c.Up[1], c.Up[2]),
			camera.WithFovy(c.Fovy),
			camera.WithNear(c.Near),
			camera.WithFar(c.Far),
		),
		renderer.WithLight(light.NewLight(
			light.WithPosition(cfg.Light.Position[0], cfg.Light.Position[1], cfg.Light.Position[2]),
			light.WithColor(cfg.Light.Color[0], cfg.Light.Color[1], cfg.Light.Color[2]),
		)),
	)
	if err != nil {
		return err
	}
	defer r.Destroy()

	// ── Loop ────────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithProfiling(cfg.Profiler.Enabled, profiler.WithInterval(cfg.Profiler.Interval.Duration())),
	)
	return eng.Run()
}
