package webgpu

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// frame holds the surface texture, its view and the encoder for one acquired frame.
// All fields are guarded by the owning device's mutex.
type frame struct {
	dev     *device
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *renderPass
}

var _ backend.Frame = &frame{}

func (f *frame) BeginRenderPass(desc backend.RenderPassDescriptor) (backend.RenderPass, error) {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()

	if f.encoder == nil {
		return nil, errors.New("frame already submitted")
	}
	if f.pass != nil {
		return nil, errors.New("render pass already open for this frame")
	}
	depthView, err := unwrapTextureView(desc.DepthView)
	if err != nil {
		return nil, errors.Wrap(err, "depth attachment")
	}

	pass := f.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    f.view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: desc.ClearColor.R,
					G: desc.ClearColor.G,
					B: desc.ClearColor.B,
					A: desc.ClearColor.A,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: desc.DepthClearValue,
		},
	})
	f.pass = &renderPass{frame: f, pass: pass}
	return f.pass, nil
}

func (f *frame) Submit() error {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()

	if f.encoder == nil {
		return errors.New("frame already submitted")
	}
	if f.pass != nil && f.pass.pass != nil {
		return errors.New("render pass still open")
	}

	commandBuffer, err := f.encoder.Finish(nil)
	f.encoder.Release()
	f.encoder = nil
	if err != nil {
		return errors.Wrap(err, "finish command encoder")
	}
	f.dev.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (f *frame) Present() error {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()

	if f.texture == nil {
		return errors.New("frame already released")
	}
	f.dev.surface.Present()
	f.releaseLocked()
	return nil
}

func (f *frame) Release() {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()
	f.releaseLocked()
}

func (f *frame) releaseLocked() {
	if f.pass != nil && f.pass.pass != nil {
		f.pass.pass.Release()
		f.pass.pass = nil
	}
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
	if f.dev.held == f {
		f.dev.held = nil
	}
}

type renderPass struct {
	frame *frame
	pass  *wgpu.RenderPassEncoder
}

var _ backend.RenderPass = &renderPass{}

func (p *renderPass) SetPipeline(rp backend.RenderPipeline) {
	if w, ok := rp.(*renderPipeline); ok && w.pipeline != nil {
		p.pass.SetPipeline(w.pipeline)
	}
}

func (p *renderPass) SetBindGroup(index uint32, bg backend.BindGroup) {
	if w, ok := bg.(*bindGroup); ok && w.group != nil {
		p.pass.SetBindGroup(index, w.group, nil)
	}
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf backend.Buffer) {
	if raw, err := unwrapBuffer(buf); err == nil {
		p.pass.SetVertexBuffer(slot, raw, 0, wgpu.WholeSize)
	}
}

func (p *renderPass) SetIndexBuffer(buf backend.Buffer, format backend.IndexFormat) {
	if raw, err := unwrapBuffer(buf); err == nil {
		p.pass.SetIndexBuffer(raw, toIndexFormat(format), 0, wgpu.WholeSize)
	}
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() error {
	if p.pass == nil {
		return errors.New("render pass already ended")
	}
	p.pass.End()
	p.pass.Release()
	p.pass = nil
	return nil
}
