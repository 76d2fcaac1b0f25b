package recording

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

// Buffer is a recorded buffer. Data holds the bytes written so far.
type Buffer struct {
	Descriptor backend.BufferDescriptor
	Data       []byte
	Writes     int
	Released   bool
}

func (b *Buffer) Label() string { return b.Descriptor.Label }
func (b *Buffer) Size() uint64  { return b.Descriptor.Size }
func (b *Buffer) Release()      { b.Released = true }

// Texture is a recorded texture.
type Texture struct {
	Descriptor  backend.TextureDescriptor
	Data        []byte
	BytesPerRow uint32
	Views       []*TextureView
	Released    bool
}

func (t *Texture) Label() string                 { return t.Descriptor.Label }
func (t *Texture) Width() uint32                 { return t.Descriptor.Width }
func (t *Texture) Height() uint32                { return t.Descriptor.Height }
func (t *Texture) Format() backend.TextureFormat { return t.Descriptor.Format }

func (t *Texture) CreateView() (backend.TextureView, error) {
	if t.Released {
		return nil, errors.Errorf("texture %q already released", t.Label())
	}
	v := &TextureView{Texture: t}
	t.Views = append(t.Views, v)
	return v, nil
}

func (t *Texture) Release() { t.Released = true }

// TextureView is a recorded texture view. Texture is nil for surface views.
type TextureView struct {
	Texture  *Texture
	Released bool
}

func (v *TextureView) Release() { v.Released = true }

// Sampler is a recorded sampler.
type Sampler struct {
	Descriptor backend.SamplerDescriptor
	Released   bool
}

func (s *Sampler) Release() { s.Released = true }

// ShaderModule is a recorded shader module.
type ShaderModule struct {
	Descriptor backend.ShaderModuleDescriptor
	Released   bool
}

func (m *ShaderModule) Release() { m.Released = true }

// BindGroupLayout is a recorded bind group layout.
type BindGroupLayout struct {
	Descriptor backend.BindGroupLayoutDescriptor
	Released   bool
}

func (l *BindGroupLayout) Label() string { return l.Descriptor.Label }
func (l *BindGroupLayout) Release()      { l.Released = true }

// BindGroup is a recorded bind group.
type BindGroup struct {
	Descriptor backend.BindGroupDescriptor
	Released   bool
}

func (g *BindGroup) Label() string { return g.Descriptor.Label }
func (g *BindGroup) Release()      { g.Released = true }

// RenderPipeline is a recorded render pipeline.
type RenderPipeline struct {
	Descriptor backend.RenderPipelineDescriptor
	Released   bool
}

func (p *RenderPipeline) Label() string { return p.Descriptor.Label }
func (p *RenderPipeline) Release()      { p.Released = true }
