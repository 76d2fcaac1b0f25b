// Package renderer owns the surface, the fixed pipeline and every GPU resource of the viewer,
// and assembles one indexed draw per frame.
package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"
	"github.com/pkg/errors"
)

// Bind group indices of the fixed layout.
const (
	CameraGroup   uint32 = 0
	TextureGroup         = material.TextureGroup
	MaterialGroup        = material.UniformGroup
	LightGroup    uint32 = 3
)

// DefaultClearColor is the color every frame is cleared to.
var DefaultClearColor = backend.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	// mu guards every field of the renderer. It is never held across a device call made by Render.
	mu            *sync.Mutex
	state         State
	surface       backend.SurfaceConfiguration
	generation    uint64
	frameInFlight bool
	depth         texture.Texture

	device backend.Device

	// Pre-creation config collected from builder options
	presentMode    backend.PresentMode
	clearColor     backend.Color
	cameraOptions  []camera.CameraBuilderOption
	textureOptions []texture.TextureBuilderOption

	// Everything below is assigned by init and cleared by Destroy, both under mu. The camera
	// guards its own mutable state.
	light   light.Light
	camera  camera.Camera
	reduced bool

	pipeline      pipeline.Pipeline
	cameraGroup   bind_group_provider.BindGroupProvider
	lightGroup    bind_group_provider.BindGroupProvider
	mesh          mesh.Mesh
	material      material.Material
	fallback      texture.Texture
	fallbackGroup bind_group_provider.BindGroupProvider

	// bindGroups holds the bind group of every schema slot, in group order.
	bindGroups []backend.BindGroup
}

// Renderer defines the interface for the viewer's rendering state.
//
// Every method must be called from the thread that owns the device. Resize and Destroy are only
// legal between frames.
type Renderer interface {
	// State returns the lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Surface returns the current surface configuration.
	//
	// Returns:
	//   - backend.SurfaceConfiguration: the configuration last applied to the surface
	Surface() backend.SurfaceConfiguration

	// Generation returns the surface generation, bumped by every successful Resize.
	//
	// Returns:
	//   - uint64: the generation
	Generation() uint64

	// Camera returns the camera the view-projection uniform is derived from.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Light returns the fixed point light.
	//
	// Returns:
	//   - light.Light: the light
	Light() light.Light

	// Mesh returns the drawn mesh.
	//
	// Returns:
	//   - mesh.Mesh: the mesh
	Mesh() mesh.Mesh

	// Material returns the mesh's material, or nil in the reduced configuration.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Depth returns the current depth attachment.
	//
	// Returns:
	//   - texture.Texture: the depth attachment
	Depth() texture.Texture

	// Reduced reports whether the model had no material and the unlit program is in use.
	//
	// Returns:
	//   - bool: true in the reduced configuration
	Reduced() bool

	// Resize reconfigures the surface and rebuilds the depth attachment. The pipeline, mesh and
	// material are kept.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	//
	// Returns:
	//   - error: ErrZeroExtent, ErrFrameInFlight or ErrDestroyed without side effects, or a device error
	Resize(width, height uint32) error

	// Input offers a key press to the renderer.
	//
	// Parameters:
	//   - key: the key code
	//
	// Returns:
	//   - bool: whether the key was consumed; always false
	Input(key uint32) bool

	// Update uploads the view-projection uniform if the camera changed since the last upload.
	//
	// Returns:
	//   - error: ErrDestroyed or the upload error
	Update() error

	// Render records and presents one frame: a single pass, one indexed draw of the mesh.
	//
	// Returns:
	//   - error: a frame error for Classify, or nil
	Render() error

	// Destroy releases every GPU resource in reverse creation order, then the device.
	//
	// Returns:
	//   - error: ErrDestroyed if already destroyed, ErrFrameInFlight during a frame
	Destroy() error
}

var _ Renderer = &renderer{}

// NewRenderer configures the surface, builds the pipeline for the model's configuration, and
// uploads the model's first mesh and its material.
//
// A model with no material uses the reduced configuration: the unlit program over the camera and
// diffuse slots, with a 1x1 white texture in the diffuse slot.
//
// Parameters:
//   - device: the device and surface to render with; owned by the renderer from now on
//   - width: the initial framebuffer width in pixels
//   - height: the initial framebuffer height in pixels
//   - model: the loaded model, with decoded textures
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer in the Ready state
//   - error: an ErrStartup-marked error; everything allocated so far is released
func NewRenderer(device backend.Device, width, height uint32, model *common.ImportedModel, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		state:       StateUninitialized,
		device:      device,
		presentMode: backend.PresentModeFifo,
		clearColor:  DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}

	if err := r.init(width, height, model); err != nil {
		r.release()
		return nil, err
	}
	r.state = StateReady

	common.Logger().Info("renderer ready",
		"format", r.surface.Format.String(),
		"width", r.surface.Width,
		"height", r.surface.Height,
		"program", r.pipeline.PipelineKey(),
		"indices", r.mesh.IndexCount(),
	)
	return r, nil
}

func (r *renderer) init(width, height uint32, model *common.ImportedModel) error {
	if width == 0 || height == 0 {
		return startupFailure(ErrZeroExtent, "initial size")
	}
	if model == nil || len(model.Meshes) == 0 {
		return startupFailure(mesh.ErrInvalidMesh, "model has no mesh")
	}
	if len(model.Meshes) > 1 {
		common.Logger().Warn("model has more than one mesh, drawing the first", "path", model.Path, "meshes", len(model.Meshes))
	}
	src := model.Meshes[0]

	format, err := pickSurfaceFormat(r.device.SurfaceCapabilities())
	if err != nil {
		return startupFailure(err, "pick surface format")
	}
	r.surface = backend.SurfaceConfiguration{
		Format:      format,
		Width:       width,
		Height:      height,
		PresentMode: pickPresentMode(r.device.SurfaceCapabilities(), r.presentMode),
	}
	if err := r.device.ConfigureSurface(r.surface); err != nil {
		return startupFailure(err, "configure surface")
	}

	r.camera, err = camera.NewCamera(append(r.cameraOptions, camera.WithAspect(float32(width)/float32(height)))...)
	if err != nil {
		return startupFailure(err, "camera")
	}
	if r.light == nil {
		r.light = light.NewLight()
	}

	r.reduced = len(model.Materials) == 0
	sh, schema, err := r.program()
	if err != nil {
		return startupFailure(err, "program")
	}
	r.pipeline, err = pipeline.NewPipeline(r.device, sh, schema, mesh.VertexLayout, format, texture.DepthFormat)
	if err != nil {
		return startupFailure(err, "pipeline")
	}

	r.cameraGroup, err = bind_group_provider.NewBindGroupProvider(r.device, camera.Slot(CameraGroup), r.pipeline.Layout(CameraGroup),
		bind_group_provider.WithLabel("Camera"),
		bind_group_provider.WithUniformData(0, r.camera.Uniform().Marshal()),
	)
	if err != nil {
		return startupFailure(err, "camera bind group")
	}
	r.camera.ClearDirty()

	if !r.reduced {
		r.lightGroup, err = bind_group_provider.NewBindGroupProvider(r.device, light.Slot(LightGroup), r.pipeline.Layout(LightGroup),
			bind_group_provider.WithLabel("Light"),
			bind_group_provider.WithUniformData(0, r.light.Uniform().Marshal()),
		)
		if err != nil {
			return startupFailure(err, "light bind group")
		}
	}

	if r.mesh, err = mesh.NewMesh(r.device, src); err != nil {
		return startupFailure(err, "mesh")
	}

	var textureGroup bind_group_provider.BindGroupProvider
	if r.reduced {
		if r.fallback, err = texture.NewSampledTexture(r.device, texture.White(), "Fallback Diffuse Texture", r.textureOptions...); err != nil {
			return startupFailure(err, "fallback texture")
		}
		r.fallbackGroup, err = bind_group_provider.NewBindGroupProvider(r.device, texture.Slot(TextureGroup), r.pipeline.Layout(TextureGroup),
			append(r.fallback.BindGroupOptions(), bind_group_provider.WithLabel("Fallback Texture"))...)
		if err != nil {
			return startupFailure(err, "fallback texture bind group")
		}
		textureGroup = r.fallbackGroup
	} else {
		idx := src.MaterialIndex
		if idx < 0 || idx >= len(model.Materials) {
			common.Logger().Warn("mesh has no usable material, using the first", "mesh", src.Name, "index", idx)
			idx = 0
		}
		r.material, err = material.NewMaterial(r.device, model.Materials[idx], r.pipeline.Layout(TextureGroup), r.pipeline.Layout(MaterialGroup),
			material.WithTextureOptions(r.textureOptions...))
		if err != nil {
			return startupFailure(err, "material")
		}
		textureGroup = r.material.TextureBindGroup()
	}

	if r.depth, err = texture.NewDepthTexture(r.device, width, height, r.generation); err != nil {
		return startupFailure(err, "depth attachment")
	}

	r.bindGroups = []backend.BindGroup{r.cameraGroup.BindGroup(), textureGroup.BindGroup()}
	if !r.reduced {
		r.bindGroups = append(r.bindGroups, r.material.UniformBindGroup().BindGroup(), r.lightGroup.BindGroup())
	}
	return nil
}

// program selects the embedded program and the schema it is checked against.
func (r *renderer) program() (shader.Shader, binding.Schema, error) {
	if r.reduced {
		sh, err := shader.Unlit()
		if err != nil {
			return nil, binding.Schema{}, err
		}
		schema, err := binding.NewSchema(camera.Slot(CameraGroup), texture.Slot(TextureGroup))
		return sh, schema, err
	}
	sh, err := shader.Lit()
	if err != nil {
		return nil, binding.Schema{}, err
	}
	schema, err := binding.NewSchema(camera.Slot(CameraGroup), texture.Slot(TextureGroup), material.Slot(MaterialGroup), light.Slot(LightGroup))
	return sh, schema, err
}

// pickSurfaceFormat prefers the first sRGB format the surface reports, otherwise the first format.
func pickSurfaceFormat(caps backend.SurfaceCapabilities) (backend.TextureFormat, error) {
	if len(caps.Formats) == 0 {
		return backend.TextureFormatUndefined, errors.New("surface reports no formats")
	}
	for _, f := range caps.Formats {
		if f.IsSrgb() {
			return f, nil
		}
	}
	return caps.Formats[0], nil
}

// pickPresentMode returns want if the surface supports it, otherwise Fifo.
func pickPresentMode(caps backend.SurfaceCapabilities, want backend.PresentMode) backend.PresentMode {
	for _, m := range caps.PresentModes {
		if m == want {
			return want
		}
	}
	if want != backend.PresentModeFifo {
		common.Logger().Warn("present mode unsupported, using fifo", "mode", want)
	}
	return backend.PresentModeFifo
}

func (r *renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *renderer) Surface() backend.SurfaceConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

func (r *renderer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

func (r *renderer) Camera() camera.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.camera
}

func (r *renderer) Light() light.Light {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.light
}

func (r *renderer) Mesh() mesh.Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mesh
}

func (r *renderer) Material() material.Material {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.material
}

func (r *renderer) Depth() texture.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

func (r *renderer) Reduced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reduced
}

func (r *renderer) Resize(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.state == StateDestroyed:
		return ErrDestroyed
	case r.frameInFlight:
		return ErrFrameInFlight
	case width == 0 || height == 0:
		return errors.Wrapf(ErrZeroExtent, "resize to %dx%d", width, height)
	}

	r.state = StateResizing
	defer func() { r.state = StateReady }()

	// Nothing is committed until both the depth attachment and the surface succeed, so a failed
	// resize leaves the last valid configuration in place.
	next := r.generation + 1
	depth, err := texture.NewDepthTexture(r.device, width, height, next)
	if err != nil {
		return errors.Wrap(err, "rebuild depth attachment")
	}

	cfg := r.surface
	cfg.Width, cfg.Height = width, height
	if err := r.device.ConfigureSurface(cfg); err != nil {
		depth.Release()
		return errors.Wrapf(err, "reconfigure surface to %dx%d", width, height)
	}

	r.surface = cfg
	r.generation = next
	r.depth.Release()
	r.depth = depth
	if err := r.camera.SetAspect(float32(width) / float32(height)); err != nil {
		return err
	}

	common.Logger().Debug("surface resized", "width", width, "height", height, "generation", r.generation)
	return nil
}

func (r *renderer) Input(key uint32) bool {
	common.Logger().Debug("key not consumed", "key", key)
	return false
}

func (r *renderer) Update() error {
	r.mu.Lock()
	destroyed := r.state == StateDestroyed
	r.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}

	if !r.camera.Dirty() {
		return nil
	}
	if err := r.cameraGroup.Write(0, r.camera.Uniform().Marshal()); err != nil {
		return errors.Wrap(err, "upload view-projection")
	}
	r.camera.ClearDirty()
	return nil
}

func (r *renderer) Render() error {
	r.mu.Lock()
	switch {
	case r.state == StateDestroyed:
		r.mu.Unlock()
		return ErrDestroyed
	case r.frameInFlight:
		r.mu.Unlock()
		return ErrFrameInFlight
	case r.depth.Generation() != r.generation:
		gen := r.depth.Generation()
		r.mu.Unlock()
		return errors.Wrapf(ErrStaleAttachment, "depth generation %d, surface generation %d", gen, r.generation)
	}
	r.frameInFlight = true
	depth := r.depth
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.frameInFlight = false
		r.mu.Unlock()
	}()

	frame, err := r.device.AcquireFrame()
	if err != nil {
		return errors.Wrap(err, "acquire frame")
	}

	if err := r.record(frame, depth); err != nil {
		frame.Release()
		return err
	}
	if err := frame.Submit(); err != nil {
		frame.Release()
		return errors.Wrap(err, "submit frame")
	}
	if err := frame.Present(); err != nil {
		frame.Release()
		return errors.Wrap(err, "present frame")
	}
	return nil
}

// record encodes the single pass of a frame.
func (r *renderer) record(frame backend.Frame, depth texture.Texture) error {
	pass, err := frame.BeginRenderPass(backend.RenderPassDescriptor{
		Label:           "Main Render Pass",
		ClearColor:      r.clearColor,
		DepthView:       depth.View(),
		DepthClearValue: 1.0,
	})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	pass.SetPipeline(r.pipeline.Pipeline())
	for group, bg := range r.bindGroups {
		pass.SetBindGroup(uint32(group), bg)
	}
	pass.SetVertexBuffer(0, r.mesh.VertexBuffer())
	pass.SetIndexBuffer(r.mesh.IndexBuffer(), backend.IndexFormatUint32)
	pass.DrawIndexed(r.mesh.IndexCount(), 1, 0, 0, 0)

	return errors.Wrap(pass.End(), "end render pass")
}

func (r *renderer) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateDestroyed {
		return ErrDestroyed
	}
	if r.frameInFlight {
		return ErrFrameInFlight
	}
	r.release()
	r.state = StateDestroyed
	return nil
}

// release releases whatever has been created, in reverse creation order, then the device.
func (r *renderer) release() {
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
	if r.fallbackGroup != nil {
		r.fallbackGroup.Release()
		r.fallbackGroup = nil
	}
	if r.fallback != nil {
		r.fallback.Release()
		r.fallback = nil
	}
	if r.material != nil {
		r.material.Release()
		r.material = nil
	}
	if r.mesh != nil {
		r.mesh.Release()
		r.mesh = nil
	}
	if r.lightGroup != nil {
		r.lightGroup.Release()
		r.lightGroup = nil
	}
	if r.cameraGroup != nil {
		r.cameraGroup.Release()
		r.cameraGroup = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	r.bindGroups = nil
	if r.device != nil {
		r.device.Release()
	}
}
