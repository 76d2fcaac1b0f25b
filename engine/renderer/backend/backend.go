// Package backend defines the GPU device contract the renderer is written against.
// Concrete implementations live in sub-packages: webgpu drives a real adapter through
// cogentcore/webgpu, and recording captures every call in memory for tests.
package backend

// Buffer is a GPU buffer owned by whoever created it.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// Texture is a GPU texture owned by whoever created it.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	Format() TextureFormat

	// CreateView creates a default full-texture view.
	//
	// Returns:
	//   - TextureView: the created view
	//   - error: an error if view creation fails
	CreateView() (TextureView, error)
	Release()
}

// TextureView is a view over a Texture, or over the acquired surface texture.
type TextureView interface {
	Release()
}

// Sampler is a GPU sampler.
type Sampler interface {
	Release()
}

// ShaderModule is a compiled shader program.
type ShaderModule interface {
	Release()
}

// BindGroupLayout is the layout of a bind group slot.
type BindGroupLayout interface {
	Label() string
	Release()
}

// BindGroup is a set of resources bound at a slot.
type BindGroup interface {
	Label() string
	Release()
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface {
	Label() string
	Release()
}

// Device is the GPU device, its queue, and the presentable surface it renders into.
//
// Every method must be called from the thread that created the device.
type Device interface {
	// SurfaceCapabilities returns the formats and present modes the surface supports.
	//
	// Returns:
	//   - SurfaceCapabilities: the supported formats and present modes
	SurfaceCapabilities() SurfaceCapabilities

	// ConfigureSurface (re)configures the presentable surface. Width and height must be non-zero.
	//
	// Parameters:
	//   - cfg: the surface configuration to apply
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	ConfigureSurface(cfg SurfaceConfiguration) error

	// CreateBuffer allocates a buffer of the described size and usage.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if allocation fails
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer queues a write of data into buf at offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into buf
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write could not be queued
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateTexture allocates a texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if allocation fails
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture queues an upload of tightly packed pixel rows into the whole of tex.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - data: the pixel bytes
	//   - bytesPerRow: the row pitch of data
	//
	// Returns:
	//   - error: an error if the upload could not be queued
	WriteTexture(tex Texture, data []byte, bytesPerRow uint32) error

	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateShaderModule(desc ShaderModuleDescriptor) (ShaderModule, error)
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// AcquireFrame acquires the next presentable surface texture and opens a command encoder for it.
	// Only one frame may be held at a time.
	//
	// Returns:
	//   - Frame: the acquired frame
	//   - error: ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrOutOfMemory or
	//     ErrDeviceLost (possibly wrapped) when acquisition fails
	AcquireFrame() (Frame, error)

	// Release releases the device, the surface and everything the device itself owns.
	Release()
}

// Frame is one acquired surface texture plus the command encoder recording into it.
type Frame interface {
	// BeginRenderPass opens the render pass for this frame. At most one pass is opened per frame.
	//
	// Parameters:
	//   - desc: the pass descriptor
	//
	// Returns:
	//   - RenderPass: the open pass
	//   - error: an error if the pass could not be opened
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)

	// Submit finishes the encoder and submits the command buffer to the queue.
	Submit() error

	// Present hands the surface texture back to the window system.
	Present() error

	// Release drops the frame without presenting. Safe to call after Present.
	Release()
}

// RenderPass records draw commands into the frame's encoder.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, bg BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
}
