package bind_group_provider

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLabel overrides the debug label, which defaults to the slot name.
//
// Parameters:
//   - label: the label to use for the provider and its resources
//
// Returns:
//   - BindGroupProviderOption: a function that sets the label for this provider
func WithLabel(label string) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.label = label
	}
}

// WithUniformData uploads data into a uniform binding right after its buffer is created.
//
// Parameters:
//   - binding: the binding index of a uniform entry
//   - data: the encoded uniform block
//
// Returns:
//   - BindGroupProviderOption: a function that sets the initial data for the specified binding
func WithUniformData(binding uint32, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.initialData[binding] = data
	}
}

// WithTextureView supplies the texture view for a texture binding.
//
// Parameters:
//   - binding: the binding index of a texture entry
//   - view: the view to bind
//
// Returns:
//   - BindGroupProviderOption: a function that sets the texture view for the specified binding
func WithTextureView(binding uint32, view backend.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
	}
}

// WithSampler supplies the sampler for a sampler binding.
//
// Parameters:
//   - binding: the binding index of a sampler entry
//   - sampler: the sampler to bind
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the specified binding
func WithSampler(binding uint32, sampler backend.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = sampler
	}
}
