package pipeline

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"

// PipelineBuilderOption is a function that configures a pipeline instance during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepthWriteEnabled is an option builder that enables or disables depth writes.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth write option to a pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare is an option builder that sets the depth comparison.
//
// Parameters:
//   - compare: the comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth compare option to a pipeline
func WithDepthCompare(compare backend.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = compare
	}
}

// WithCullMode is an option builder that sets which faces are culled.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that applies the cull mode option to a pipeline
func WithCullMode(mode backend.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace is an option builder that sets the winding order of front faces.
//
// Parameters:
//   - face: the winding order
//
// Returns:
//   - PipelineBuilderOption: a function that applies the front face option to a pipeline
func WithFrontFace(face backend.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithTopology is an option builder that sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that applies the topology option to a pipeline
func WithTopology(topology backend.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}
