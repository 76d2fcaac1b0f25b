package texture

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"

// TextureBuilderOption overrides the sampler of a sampled texture.
type TextureBuilderOption func(*texture)

// WithFilterMode sets the magnification, minification and mipmap filter.
//
// Parameters:
//   - filter: the filter mode
//
// Returns:
//   - TextureBuilderOption: a function that sets the sampler filters
func WithFilterMode(filter backend.FilterMode) TextureBuilderOption {
	return func(t *texture) {
		t.samplerDesc.MagFilter = filter
		t.samplerDesc.MinFilter = filter
		t.samplerDesc.MipmapFilter = filter
	}
}

// WithAddressMode sets the addressing mode for all three texture coordinates.
//
// Parameters:
//   - mode: the address mode
//
// Returns:
//   - TextureBuilderOption: a function that sets the sampler address modes
func WithAddressMode(mode backend.AddressMode) TextureBuilderOption {
	return func(t *texture) {
		t.samplerDesc.AddressModeU = mode
		t.samplerDesc.AddressModeV = mode
		t.samplerDesc.AddressModeW = mode
	}
}

// WithMaxAnisotropy sets the sampler's maximum anisotropy clamp.
//
// Parameters:
//   - n: the anisotropy clamp, 1 disables anisotropic filtering
//
// Returns:
//   - TextureBuilderOption: a function that sets the anisotropy clamp
func WithMaxAnisotropy(n uint16) TextureBuilderOption {
	return func(t *texture) {
		t.samplerDesc.MaxAnisotropy = n
	}
}
