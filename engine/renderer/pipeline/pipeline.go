// Package pipeline builds the fixed render pipeline: it checks the program against the binding
// schema and the vertex layout, compiles it, and creates the pipeline over the schema's layouts.
package pipeline

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/pkg/errors"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline; it is the program key.
	pipelineKey string

	shader shader.Shader
	schema binding.Schema

	// The following properties configure the pipeline during creation and can be set with the builder options.

	depthWriteEnabled bool
	depthCompare      backend.CompareFunction
	cullMode          backend.CullMode
	topology          backend.PrimitiveTopology
	frontFace         backend.FrontFace

	// The following fields are GPU resources owned by the pipeline and released by Release.

	module         backend.ShaderModule
	layouts        []backend.BindGroupLayout
	renderPipeline backend.RenderPipeline
}

// Pipeline defines the interface for the compiled render pipeline together with the bind group
// layouts it was built against.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the program the pipeline was compiled from.
	//
	// Returns:
	//   - shader.Shader: the program
	Shader() shader.Shader

	// Schema returns the binding schema the pipeline's layouts were created from.
	//
	// Returns:
	//   - binding.Schema: the schema
	Schema() binding.Schema

	// Layout returns the bind group layout created for a group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - backend.BindGroupLayout: the layout, or nil if the schema has no such group
	Layout(group uint32) backend.BindGroupLayout

	// Pipeline returns the underlying render pipeline.
	//
	// Returns:
	//   - backend.RenderPipeline: the render pipeline
	Pipeline() backend.RenderPipeline

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - backend.CullMode: the cull mode
	CullMode() backend.CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - backend.FrontFace: the winding order
	FrontFace() backend.FrontFace

	// Release releases the pipeline, the layouts and the shader module, in reverse creation order.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline verifies the contract between the program, the schema and the vertex layout,
// then compiles the program and creates one bind group layout per schema slot and the render
// pipeline. The default state is a triangle list with back-face culling, counter-clockwise front
// faces, and a Depth32Float depth test with compare Less and depth writes on.
//
// Parameters:
//   - device: the device that compiles and creates the pipeline
//   - sh: the reflected program
//   - schema: the bind group slots, in group order
//   - vertexLayout: the layout of vertex buffer slot 0
//   - colorFormat: the surface format of the single color target
//   - depthFormat: the depth attachment format
//   - options: functional options overriding the fixed-function state
//
// Returns:
//   - Pipeline: the created pipeline
//   - error: a binding.ErrContract-caused error on mismatch, or the device error; partial allocations are released
func NewPipeline(device backend.Device, sh shader.Shader, schema binding.Schema, vertexLayout backend.VertexBufferLayout, colorFormat, depthFormat backend.TextureFormat, options ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		pipelineKey:       sh.Key(),
		shader:            sh,
		schema:            schema,
		depthWriteEnabled: true,
		depthCompare:      backend.CompareFunctionLess,
		cullMode:          backend.CullModeBack,
		topology:          backend.PrimitiveTopologyTriangleList,
		frontFace:         backend.FrontFaceCCW,
	}
	for _, opt := range options {
		opt(p)
	}

	if err := schema.CheckShader(sh); err != nil {
		return nil, err
	}
	if err := binding.CheckVertexInput(sh, vertexLayout); err != nil {
		return nil, err
	}

	var err error
	if p.module, err = device.CreateShaderModule(sh.Module()); err != nil {
		return nil, errors.Wrapf(err, "compile %s", sh.Key())
	}

	for _, slot := range schema.Slots {
		layout, err := device.CreateBindGroupLayout(slot.LayoutDescriptor())
		if err != nil {
			p.Release()
			return nil, errors.Wrapf(err, "create layout for group %d", slot.Group)
		}
		p.layouts = append(p.layouts, layout)
	}

	p.renderPipeline, err = device.CreateRenderPipeline(backend.RenderPipelineDescriptor{
		Label:              sh.Key() + " Render Pipeline",
		BindGroupLayouts:   p.layouts,
		Module:             p.module,
		VertexEntryPoint:   sh.EntryPoint(backend.ShaderStageVertex),
		FragmentEntryPoint: sh.EntryPoint(backend.ShaderStageFragment),
		VertexBuffers:      []backend.VertexBufferLayout{vertexLayout},
		Topology:           p.topology,
		FrontFace:          p.frontFace,
		CullMode:           p.cullMode,
		ColorFormat:        colorFormat,
		DepthFormat:        depthFormat,
		DepthWriteEnabled:  p.depthWriteEnabled,
		DepthCompare:       p.depthCompare,
	})
	if err != nil {
		p.Release()
		return nil, errors.Wrapf(err, "create %s pipeline", sh.Key())
	}
	return p, nil
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Schema() binding.Schema {
	return p.schema
}

func (p *pipeline) Layout(group uint32) backend.BindGroupLayout {
	if int(group) >= len(p.layouts) {
		return nil
	}
	return p.layouts[group]
}

func (p *pipeline) Pipeline() backend.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() backend.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() backend.FrontFace {
	return p.frontFace
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for i := len(p.layouts) - 1; i >= 0; i-- {
		p.layouts[i].Release()
	}
	p.layouts = nil
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
