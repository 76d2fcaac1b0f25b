package recording

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

// Draw is one recorded DrawIndexed call.
type Draw struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Frame is a recorded acquired frame.
type Frame struct {
	dev *Device

	// Surface is the surface configuration the frame was acquired under.
	Surface backend.SurfaceConfiguration

	Passes    []*Pass
	Submitted bool
	Presented bool
	Released  bool
}

var _ backend.Frame = &Frame{}

func (f *Frame) BeginRenderPass(desc backend.RenderPassDescriptor) (backend.RenderPass, error) {
	if f.Submitted || f.Released {
		return nil, errors.New("frame already submitted")
	}
	if len(f.Passes) > 0 {
		return nil, errors.New("render pass already open for this frame")
	}
	if desc.DepthView == nil {
		return nil, errors.New("render pass needs a depth attachment")
	}
	p := &Pass{
		Descriptor:    desc,
		BindGroups:    make(map[uint32]backend.BindGroup),
		VertexBuffers: make(map[uint32]backend.Buffer),
	}
	f.Passes = append(f.Passes, p)
	return p, nil
}

func (f *Frame) Submit() error {
	if f.Submitted {
		return errors.New("frame already submitted")
	}
	for _, p := range f.Passes {
		if !p.Ended {
			return errors.New("render pass still open")
		}
	}
	f.Submitted = true
	return nil
}

func (f *Frame) Present() error {
	if f.Released {
		return errors.New("frame already released")
	}
	f.Presented = true
	f.Release()
	return nil
}

func (f *Frame) Release() {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()
	f.Released = true
	if f.dev.held == f {
		f.dev.held = nil
	}
}

// Draws returns every draw recorded across the frame's passes.
func (f *Frame) Draws() []Draw {
	var out []Draw
	for _, p := range f.Passes {
		out = append(out, p.Draws...)
	}
	return out
}

// Pass is a recorded render pass. BindGroups and VertexBuffers hold the last binding per slot.
type Pass struct {
	Descriptor    backend.RenderPassDescriptor
	Pipeline      backend.RenderPipeline
	BindGroups    map[uint32]backend.BindGroup
	BindOrder     []uint32
	VertexBuffers map[uint32]backend.Buffer
	IndexBuffer   backend.Buffer
	IndexFormat   backend.IndexFormat
	Draws         []Draw
	Ended         bool
}

var _ backend.RenderPass = &Pass{}

func (p *Pass) SetPipeline(rp backend.RenderPipeline) { p.Pipeline = rp }

func (p *Pass) SetBindGroup(index uint32, bg backend.BindGroup) {
	p.BindGroups[index] = bg
	p.BindOrder = append(p.BindOrder, index)
}

func (p *Pass) SetVertexBuffer(slot uint32, buf backend.Buffer) { p.VertexBuffers[slot] = buf }

func (p *Pass) SetIndexBuffer(buf backend.Buffer, format backend.IndexFormat) {
	p.IndexBuffer = buf
	p.IndexFormat = format
}

func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Draws = append(p.Draws, Draw{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

func (p *Pass) End() error {
	if p.Ended {
		return errors.New("render pass already ended")
	}
	p.Ended = true
	return nil
}
