// Package webgpu implements backend.Device on top of cogentcore/webgpu.
package webgpu

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

type device struct {
	mu *sync.Mutex

	label         string
	forceFallback bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	alphaMode  wgpu.CompositeAlphaMode
	configured bool
	held       *frame
}

var _ backend.Device = &device{}

// NewDevice creates a WebGPU instance, a surface for the given window descriptor, and a device
// on an adapter compatible with that surface. The calling goroutine is locked to its OS thread
// because every later device call must happen on the same thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor supplied by the window
//   - options: functional options for device configuration
//
// Returns:
//   - backend.Device: the created device
//   - error: an error if no adapter or device could be obtained
func NewDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...DeviceBuilderOption) (backend.Device, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("nil surface descriptor")
	}
	runtime.LockOSThread()

	d := &device{
		mu:    &sync.Mutex{},
		label: "Main Device",
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, errors.Wrap(err, "request adapter")
	}
	d.adapter = a

	limits := wgpu.DefaultLimits()
	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.Release()
		return nil, errors.Wrap(err, "request device")
	}
	d.device = dev
	d.queue = dev.GetQueue()

	common.Logger().Info("webgpu device ready", "label", d.label, "fallback", d.forceFallback)
	return d, nil
}

func (d *device) SurfaceCapabilities() backend.SurfaceCapabilities {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps := d.surface.GetCapabilities(d.adapter)
	out := backend.SurfaceCapabilities{}
	for _, f := range caps.Formats {
		if bf, ok := fromTextureFormat(f); ok {
			out.Formats = append(out.Formats, bf)
		}
	}
	for _, m := range caps.PresentModes {
		if bm, ok := fromPresentMode(m); ok {
			out.PresentModes = append(out.PresentModes, bm)
		}
	}
	if len(caps.AlphaModes) > 0 {
		d.alphaMode = caps.AlphaModes[0]
	}
	return out
}

func (d *device) ConfigureSurface(cfg backend.SurfaceConfiguration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.Errorf("surface extent %dx%d must be non-zero", cfg.Width, cfg.Height)
	}
	format := toTextureFormat(cfg.Format)
	if format == wgpu.TextureFormatUndefined {
		return errors.Errorf("unsupported surface format %s", cfg.Format)
	}
	mode, ok := presentModeMap[cfg.PresentMode]
	if !ok {
		mode = wgpu.PresentModeFifo
	}

	if d.alphaMode == 0 {
		caps := d.surface.GetCapabilities(d.adapter)
		if len(caps.AlphaModes) > 0 {
			d.alphaMode = caps.AlphaModes[0]
		}
	}

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: mode,
		AlphaMode:   d.alphaMode,
	})
	d.configured = true
	return nil
}

func (d *device) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer %q", desc.Label)
	}
	return &buffer{label: desc.Label, size: desc.Size, buf: buf}, nil
}

func (d *device) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := unwrapBuffer(buf)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > buf.Size() {
		return errors.Errorf("write of %d bytes at offset %d overflows buffer %q (%d bytes)", len(data), offset, buf.Label(), buf.Size())
	}
	if err := d.queue.WriteBuffer(raw, offset, data); err != nil {
		return errors.Wrapf(err, "write buffer %q", buf.Label())
	}
	return nil
}

func (d *device) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Usage: toTextureUsage(desc.Usage),
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toTextureFormat(desc.Format),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create texture %q", desc.Label)
	}
	return &texture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		tex:    tex,
	}, nil
}

func (d *device) WriteTexture(tex backend.Texture, data []byte, bytesPerRow uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := unwrapTexture(tex)
	if err != nil {
		return err
	}
	if uint64(bytesPerRow)*uint64(tex.Height()) > uint64(len(data)) {
		return errors.Errorf("pixel data for %q is %d bytes, need %d", tex.Label(), len(data), bytesPerRow*tex.Height())
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  raw,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: tex.Height(),
		},
		&wgpu.Extent3D{
			Width:              tex.Width(),
			Height:             tex.Height(),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (d *device) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressModeU),
		AddressModeV:  toAddressMode(desc.AddressModeV),
		AddressModeW:  toAddressMode(desc.AddressModeW),
		MagFilter:     toFilterMode(desc.MagFilter),
		MinFilter:     toFilterMode(desc.MinFilter),
		MipmapFilter:  toMipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   common.Coalesce(desc.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(desc.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create sampler %q", desc.Label)
	}
	return &sampler{samp: samp}, nil
}

func (d *device) CreateShaderModule(desc backend.ShaderModuleDescriptor) (backend.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Code,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "compile shader %q", desc.Label)
	}
	return &shaderModule{module: module}, nil
}

func (d *device) CreateBindGroupLayout(desc backend.BindGroupLayoutDescriptor) (backend.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = toLayoutEntry(e)
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create bind group layout %q", desc.Label)
	}
	return &bindGroupLayout{label: desc.Label, layout: layout}, nil
}

func (d *device) CreateBindGroup(desc backend.BindGroupDescriptor) (backend.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	layout, err := unwrapBindGroupLayout(desc.Layout)
	if err != nil {
		return nil, err
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			buf, err := unwrapBuffer(e.Buffer)
			if err != nil {
				return nil, err
			}
			entry.Buffer = buf
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.TextureView != nil:
			view, err := unwrapTextureView(e.TextureView)
			if err != nil {
				return nil, err
			}
			entry.TextureView = view
		case e.Sampler != nil:
			samp, err := unwrapSampler(e.Sampler)
			if err != nil {
				return nil, err
			}
			entry.Sampler = samp
		default:
			return nil, errors.Errorf("bind group %q entry %d has no resource", desc.Label, e.Binding)
		}
		entries[i] = entry
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create bind group %q", desc.Label)
	}
	return &bindGroup{label: desc.Label, group: group}, nil
}

func (d *device) CreateRenderPipeline(desc backend.RenderPipelineDescriptor) (backend.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	module, ok := desc.Module.(*shaderModule)
	if !ok || module.module == nil {
		return nil, errors.New("shader module was not created by the webgpu backend")
	}

	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		raw, err := unwrapBindGroupLayout(l)
		if err != nil {
			return nil, errors.Wrapf(err, "bind group layout %d", i)
		}
		layouts[i] = raw
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create pipeline layout %q", desc.Label)
	}

	vertexBuffers := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, vb := range desc.VertexBuffers {
		attrs := make([]wgpu.VertexAttribute, len(vb.Attributes))
		for j, a := range vb.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         toVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		vertexBuffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: vb.ArrayStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module.module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module.module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    toTextureFormat(desc.ColorFormat),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(desc.Topology),
			FrontFace: toFrontFace(desc.FrontFace),
			CullMode:  toCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            toTextureFormat(desc.DepthFormat),
			DepthWriteEnabled: desc.DepthWriteEnabled,
			DepthCompare:      toCompareFunction(desc.DepthCompare),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		pipelineLayout.Release()
		return nil, errors.Wrapf(err, "create render pipeline %q", desc.Label)
	}
	return &renderPipeline{label: desc.Label, layout: pipelineLayout, pipeline: created}, nil
}

func (d *device) AcquireFrame() (backend.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.configured {
		return nil, errors.New("surface is not configured")
	}
	if d.held != nil {
		return nil, backend.ErrFrameHeld
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, backend.SurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, errors.Wrap(err, "create surface view")
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, errors.Wrap(err, "create command encoder")
	}

	f := &frame{
		dev:     d,
		texture: surfaceTexture,
		view:    view,
		encoder: encoder,
	}
	d.held = f
	return f, nil
}

func (d *device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.held != nil {
		d.held.releaseLocked()
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
