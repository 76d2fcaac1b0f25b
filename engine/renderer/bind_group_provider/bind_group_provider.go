package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/pkg/errors"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// slot is the binding declaration this provider satisfies.
	slot binding.Slot

	// initialData holds the uniform payloads supplied through WithUniformData, keyed by binding index.
	initialData map[uint32][]byte
	// textureViews holds the texture views supplied through WithTextureView, keyed by binding index. Not owned.
	textureViews map[uint32]backend.TextureView
	// samplers holds the samplers supplied through WithSampler, keyed by binding index. Not owned.
	samplers map[uint32]backend.Sampler

	// The following fields are GPU allocated resources owned by the provider and released by Release.

	// bindGroup is the GPU bind group created for this provider.
	bindGroup backend.BindGroup
	// buffers holds the uniform buffers created for this provider, keyed by binding index.
	buffers map[uint32]backend.Buffer

	device backend.Device
}

// BindGroupProvider owns the GPU bind group for one binding.Slot together with the uniform
// buffers the slot declares. Texture views and samplers are borrowed from their owner.
//
// Usage pattern:
//  1. The owner declares a binding.Slot (camera.Slot, light.Slot, ...)
//  2. The renderer creates the layout from slot.LayoutDescriptor()
//  3. The owner calls NewBindGroupProvider with the layout and its resources
//  4. The renderer writes uniforms with Write and binds BindGroup() each frame
type BindGroupProvider interface {
	// Release releases the bind group and every uniform buffer the provider created.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Slot returns the binding declaration this provider satisfies.
	//
	// Returns:
	//   - binding.Slot: the slot
	Slot() binding.Slot

	// BindGroup returns the created bind group for shader binding.
	//
	// Returns:
	//   - backend.BindGroup: the bind group
	BindGroup() backend.BindGroup

	// Buffer returns the uniform buffer created for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - backend.Buffer: the buffer or nil if the binding is not a uniform
	Buffer(binding uint32) backend.Buffer

	// Write replaces the full contents of a uniform binding.
	//
	// Parameters:
	//   - binding: the binding index of a uniform entry
	//   - data: the encoded uniform block, exactly the layout size
	//
	// Returns:
	//   - error: an error if the binding is not a uniform, the size is wrong, or the write fails
	Write(binding uint32, data []byte) error
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates the uniform buffers a slot declares, uploads any initial data,
// and creates the bind group against layout.
//
// Parameters:
//   - device: the device that allocates the resources
//   - slot: the binding declaration to satisfy
//   - layout: the bind group layout created from slot.LayoutDescriptor()
//   - options: resources and initial data for the slot's entries
//
// Returns:
//   - BindGroupProvider: the provider
//   - error: an error if a resource is missing or an allocation fails; partial allocations are released
func NewBindGroupProvider(device backend.Device, slot binding.Slot, layout backend.BindGroupLayout, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	p := &bindGroupProvider{
		label:        slot.Name,
		slot:         slot,
		initialData:  make(map[uint32][]byte),
		textureViews: make(map[uint32]backend.TextureView),
		samplers:     make(map[uint32]backend.Sampler),
		buffers:      make(map[uint32]backend.Buffer),
		device:       device,
	}
	for _, option := range options {
		option(p)
	}

	entries := make([]backend.BindGroupEntry, 0, len(slot.Entries))
	for _, e := range slot.Entries {
		entry := backend.BindGroupEntry{Binding: e.Binding}
		switch e.Kind {
		case backend.BindingKindUniform:
			buf, err := p.createUniform(e)
			if err != nil {
				p.Release()
				return nil, err
			}
			entry.Buffer = buf
		case backend.BindingKindTexture:
			entry.TextureView = p.textureViews[e.Binding]
			if entry.TextureView == nil {
				p.Release()
				return nil, errors.Errorf("%s binding %d (%s) has no texture view", p.label, e.Binding, e.Name)
			}
		case backend.BindingKindSampler:
			entry.Sampler = p.samplers[e.Binding]
			if entry.Sampler == nil {
				p.Release()
				return nil, errors.Errorf("%s binding %d (%s) has no sampler", p.label, e.Binding, e.Name)
			}
		}
		entries = append(entries, entry)
	}

	bg, err := device.CreateBindGroup(backend.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s Bind Group", p.label),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		p.Release()
		return nil, errors.Wrapf(err, "create %s bind group", p.label)
	}
	p.bindGroup = bg
	return p, nil
}

// createUniform allocates and optionally fills the buffer for a uniform entry.
func (p *bindGroupProvider) createUniform(e binding.Entry) (backend.Buffer, error) {
	size := e.Layout.Size()
	buf, err := p.device.CreateBuffer(backend.BufferDescriptor{
		Label: fmt.Sprintf("%s Buffer", e.Layout.Name),
		Size:  size,
		Usage: backend.BufferUsageUniform | backend.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s uniform buffer", e.Name)
	}
	p.buffers[e.Binding] = buf

	if data, ok := p.initialData[e.Binding]; ok {
		if err := p.Write(e.Binding, data); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for b, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, b)
	}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Slot() binding.Slot {
	return p.slot
}

func (p *bindGroupProvider) BindGroup() backend.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding uint32) backend.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Write(binding uint32, data []byte) error {
	buf, ok := p.buffers[binding]
	if !ok {
		return errors.Errorf("%s binding %d is not a uniform", p.label, binding)
	}
	if uint64(len(data)) != buf.Size() {
		return errors.Errorf("%s binding %d expects %d bytes, got %d", p.label, binding, buf.Size(), len(data))
	}
	if err := p.device.WriteBuffer(buf, 0, data); err != nil {
		return errors.Wrapf(err, "write %s binding %d", p.label, binding)
	}
	return nil
}
