package material

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that overrides the name of the material, which also prefixes
// every GPU resource label.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithShininess is an option builder that overrides the imported specular exponent.
//
// Parameters:
//   - shininess: the specular exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shininess option to a material
func WithShininess(shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.shininess = shininess
	}
}

// WithTextureOptions is an option builder that forwards sampler overrides to the diffuse texture.
//
// Parameters:
//   - options: the texture builder options
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture options to a material
func WithTextureOptions(options ...texture.TextureBuilderOption) MaterialBuilderOption {
	return func(m *material) {
		m.textureOptions = append(m.textureOptions, options...)
	}
}
