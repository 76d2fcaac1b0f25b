// Package recording provides an in-memory backend.Device that records every call.
// It never touches a GPU and is used to test resource construction and frame assembly.
package recording

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

// Op names recorded in Device.Calls.
const (
	OpConfigureSurface      = "ConfigureSurface"
	OpCreateBuffer          = "CreateBuffer"
	OpWriteBuffer           = "WriteBuffer"
	OpCreateTexture         = "CreateTexture"
	OpWriteTexture          = "WriteTexture"
	OpCreateSampler         = "CreateSampler"
	OpCreateShaderModule    = "CreateShaderModule"
	OpCreateBindGroupLayout = "CreateBindGroupLayout"
	OpCreateBindGroup       = "CreateBindGroup"
	OpCreateRenderPipeline  = "CreateRenderPipeline"
	OpAcquireFrame          = "AcquireFrame"
)

// Call is one recorded device call.
type Call struct {
	Op    string
	Label string
}

// Device is a recording backend.Device. Exported fields may be inspected by tests after calls
// return; they must not be mutated concurrently with device calls.
type Device struct {
	mu *sync.Mutex

	Capabilities backend.SurfaceCapabilities
	Surface      *backend.SurfaceConfiguration

	Calls            []Call
	SurfaceConfigs   []backend.SurfaceConfiguration
	Buffers          []*Buffer
	Textures         []*Texture
	Samplers         []*Sampler
	Shaders          []*ShaderModule
	BindGroupLayouts []*BindGroupLayout
	BindGroups       []*BindGroup
	Pipelines        []*RenderPipeline
	Frames           []*Frame

	failures map[string][]error
	held     *Frame
	Released bool
}

var _ backend.Device = &Device{}

// DeviceOption configures a recording Device.
type DeviceOption func(*Device)

// WithCapabilities overrides the reported surface capabilities.
func WithCapabilities(caps backend.SurfaceCapabilities) DeviceOption {
	return func(d *Device) {
		d.Capabilities = caps
	}
}

// NewDevice creates a recording device that reports bgra8unorm-srgb and bgra8unorm formats
// and fifo/immediate present modes.
func NewDevice(options ...DeviceOption) *Device {
	d := &Device{
		mu: &sync.Mutex{},
		Capabilities: backend.SurfaceCapabilities{
			Formats:      []backend.TextureFormat{backend.TextureFormatBGRA8UnormSrgb, backend.TextureFormatBGRA8Unorm},
			PresentModes: []backend.PresentMode{backend.PresentModeFifo, backend.PresentModeImmediate},
		},
		failures: make(map[string][]error),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// FailNext queues err to be returned by the next call of op. Queued errors are consumed in order.
//
// Parameters:
//   - op: one of the Op* constants
//   - err: the error to return
func (d *Device) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = append(d.failures[op], err)
}

// Count returns how many times op was called, including failed calls.
func (d *Device) Count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastFrame returns the most recently acquired frame, or nil.
func (d *Device) LastFrame() *Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Frames) == 0 {
		return nil
	}
	return d.Frames[len(d.Frames)-1]
}

// LiveTextures returns the textures that have not been released.
func (d *Device) LiveTextures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	var live []*Texture
	for _, t := range d.Textures {
		if !t.Released {
			live = append(live, t)
		}
	}
	return live
}

// record appends a call and pops a queued failure for op, if any. Caller holds mu.
func (d *Device) record(op, label string) error {
	d.Calls = append(d.Calls, Call{Op: op, Label: label})
	if q := d.failures[op]; len(q) > 0 {
		d.failures[op] = q[1:]
		return q[0]
	}
	return nil
}

func (d *Device) SurfaceCapabilities() backend.SurfaceCapabilities {
	return d.Capabilities
}

func (d *Device) ConfigureSurface(cfg backend.SurfaceConfiguration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpConfigureSurface, ""); err != nil {
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.Errorf("surface extent %dx%d must be non-zero", cfg.Width, cfg.Height)
	}
	d.SurfaceConfigs = append(d.SurfaceConfigs, cfg)
	c := cfg
	d.Surface = &c
	return nil
}

func (d *Device) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateBuffer, desc.Label); err != nil {
		return nil, err
	}
	if desc.Size == 0 {
		return nil, errors.Errorf("buffer %q has zero size", desc.Label)
	}
	b := &Buffer{Descriptor: desc, Data: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpWriteBuffer, buf.Label()); err != nil {
		return err
	}
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("buffer was not created by the recording backend")
	}
	if b.Released {
		return errors.Errorf("write to released buffer %q", b.Label())
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		return errors.Errorf("write of %d bytes at offset %d overflows buffer %q", len(data), offset, b.Label())
	}
	copy(b.Data[offset:], data)
	b.Writes++
	return nil
}

func (d *Device) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateTexture, desc.Label); err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, errors.Errorf("texture %q has zero extent", desc.Label)
	}
	t := &Texture{Descriptor: desc}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) WriteTexture(tex backend.Texture, data []byte, bytesPerRow uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpWriteTexture, tex.Label()); err != nil {
		return err
	}
	t, ok := tex.(*Texture)
	if !ok {
		return errors.New("texture was not created by the recording backend")
	}
	if uint64(bytesPerRow)*uint64(t.Height()) > uint64(len(data)) {
		return errors.Errorf("pixel data for %q is %d bytes, need %d", t.Label(), len(data), bytesPerRow*t.Height())
	}
	t.Data = append([]byte(nil), data...)
	t.BytesPerRow = bytesPerRow
	return nil
}

func (d *Device) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateSampler, desc.Label); err != nil {
		return nil, err
	}
	s := &Sampler{Descriptor: desc}
	d.Samplers = append(d.Samplers, s)
	return s, nil
}

func (d *Device) CreateShaderModule(desc backend.ShaderModuleDescriptor) (backend.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateShaderModule, desc.Label); err != nil {
		return nil, err
	}
	m := &ShaderModule{Descriptor: desc}
	d.Shaders = append(d.Shaders, m)
	return m, nil
}

func (d *Device) CreateBindGroupLayout(desc backend.BindGroupLayoutDescriptor) (backend.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateBindGroupLayout, desc.Label); err != nil {
		return nil, err
	}
	l := &BindGroupLayout{Descriptor: desc}
	d.BindGroupLayouts = append(d.BindGroupLayouts, l)
	return l, nil
}

func (d *Device) CreateBindGroup(desc backend.BindGroupDescriptor) (backend.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateBindGroup, desc.Label); err != nil {
		return nil, err
	}
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, errors.Errorf("bind group %q has no recording layout", desc.Label)
	}
	if len(layout.Descriptor.Entries) != len(desc.Entries) {
		return nil, errors.Errorf("bind group %q has %d entries, layout %q expects %d",
			desc.Label, len(desc.Entries), layout.Label(), len(layout.Descriptor.Entries))
	}
	for i, want := range layout.Descriptor.Entries {
		got := desc.Entries[i]
		if got.Binding != want.Binding {
			return nil, errors.Errorf("bind group %q entry %d binds %d, layout expects %d", desc.Label, i, got.Binding, want.Binding)
		}
		switch want.Kind {
		case backend.BindingKindUniform:
			if got.Buffer == nil || got.Buffer.Size() < want.MinBindingSize {
				return nil, errors.Errorf("bind group %q binding %d needs a uniform buffer of at least %d bytes", desc.Label, want.Binding, want.MinBindingSize)
			}
		case backend.BindingKindTexture:
			if got.TextureView == nil {
				return nil, errors.Errorf("bind group %q binding %d needs a texture view", desc.Label, want.Binding)
			}
		case backend.BindingKindSampler:
			if got.Sampler == nil {
				return nil, errors.Errorf("bind group %q binding %d needs a sampler", desc.Label, want.Binding)
			}
		}
	}
	g := &BindGroup{Descriptor: desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateRenderPipeline(desc backend.RenderPipelineDescriptor) (backend.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpCreateRenderPipeline, desc.Label); err != nil {
		return nil, err
	}
	p := &RenderPipeline{Descriptor: desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) AcquireFrame() (backend.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(OpAcquireFrame, ""); err != nil {
		return nil, err
	}
	if d.Surface == nil {
		return nil, errors.New("surface is not configured")
	}
	if d.held != nil {
		return nil, backend.ErrFrameHeld
	}
	f := &Frame{dev: d, Surface: *d.Surface}
	d.held = f
	d.Frames = append(d.Frames, f)
	return f, nil
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Released = true
}
