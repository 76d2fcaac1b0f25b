package webgpu

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

type buffer struct {
	label string
	size  uint64
	buf   *wgpu.Buffer
}

var _ backend.Buffer = &buffer{}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }
func (b *buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type texture struct {
	label         string
	width, height uint32
	format        backend.TextureFormat
	tex           *wgpu.Texture
}

var _ backend.Texture = &texture{}

func (t *texture) Label() string                 { return t.label }
func (t *texture) Width() uint32                 { return t.width }
func (t *texture) Height() uint32                { return t.height }
func (t *texture) Format() backend.TextureFormat { return t.format }

func (t *texture) CreateView() (backend.TextureView, error) {
	if t.tex == nil {
		return nil, errors.Errorf("texture %q already released", t.label)
	}
	view, err := t.tex.CreateView(nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create view for %q", t.label)
	}
	return &textureView{view: view}, nil
}

func (t *texture) Release() {
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

type textureView struct {
	view *wgpu.TextureView
}

func (v *textureView) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}

type sampler struct {
	samp *wgpu.Sampler
}

func (s *sampler) Release() {
	if s.samp != nil {
		s.samp.Release()
		s.samp = nil
	}
}

type shaderModule struct {
	module *wgpu.ShaderModule
}

func (m *shaderModule) Release() {
	if m.module != nil {
		m.module.Release()
		m.module = nil
	}
}

type bindGroupLayout struct {
	label  string
	layout *wgpu.BindGroupLayout
}

func (l *bindGroupLayout) Label() string { return l.label }
func (l *bindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type bindGroup struct {
	label string
	group *wgpu.BindGroup
}

func (g *bindGroup) Label() string { return g.label }
func (g *bindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type renderPipeline struct {
	label    string
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.RenderPipeline
}

func (p *renderPipeline) Label() string { return p.label }
func (p *renderPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}

// unwrap helpers reject handles that were created by a different backend.

func unwrapBuffer(b backend.Buffer) (*wgpu.Buffer, error) {
	if w, ok := b.(*buffer); ok && w.buf != nil {
		return w.buf, nil
	}
	return nil, errors.New("buffer was not created by the webgpu backend")
}

func unwrapTexture(t backend.Texture) (*wgpu.Texture, error) {
	if w, ok := t.(*texture); ok && w.tex != nil {
		return w.tex, nil
	}
	return nil, errors.New("texture was not created by the webgpu backend")
}

func unwrapTextureView(v backend.TextureView) (*wgpu.TextureView, error) {
	if w, ok := v.(*textureView); ok && w.view != nil {
		return w.view, nil
	}
	return nil, errors.New("texture view was not created by the webgpu backend")
}

func unwrapSampler(s backend.Sampler) (*wgpu.Sampler, error) {
	if w, ok := s.(*sampler); ok && w.samp != nil {
		return w.samp, nil
	}
	return nil, errors.New("sampler was not created by the webgpu backend")
}

func unwrapBindGroupLayout(l backend.BindGroupLayout) (*wgpu.BindGroupLayout, error) {
	if w, ok := l.(*bindGroupLayout); ok && w.layout != nil {
		return w.layout, nil
	}
	return nil, errors.New("bind group layout was not created by the webgpu backend")
}
