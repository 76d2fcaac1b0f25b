package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// A mode the surface does not support falls back to Fifo.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode backend.PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithClearColor sets the color every frame's color attachment is cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c backend.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithCameraOptions forwards options to the camera. The aspect ratio always follows the surface.
//
// Parameters:
//   - options: the camera options
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera options to a renderer
func WithCameraOptions(options ...camera.CameraBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.cameraOptions = append(r.cameraOptions, options...)
	}
}

// WithLight replaces the default point light.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - RendererBuilderOption: a function that applies the light option to a renderer
func WithLight(l light.Light) RendererBuilderOption {
	return func(r *renderer) {
		r.light = l
	}
}

// WithTextureOptions forwards sampler options to every diffuse texture.
func WithTextureOptions(options ...texture.TextureBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.textureOptions = append(r.textureOptions, options...)
	}
}
