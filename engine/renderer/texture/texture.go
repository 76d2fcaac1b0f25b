// Package texture wraps GPU images: the sampled diffuse texture of a material and the depth
// attachment of the surface.
package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/pkg/errors"
)

// ErrInvalidImage is the cause of every rejected texture input.
var ErrInvalidImage = errors.New("invalid texture image")

// DepthFormat is the format of every depth attachment.
const DepthFormat = backend.TextureFormatDepth32Float

// SampledFormat is the format of every sampled diffuse texture.
const SampledFormat = backend.TextureFormatRGBA8UnormSrgb

type texture struct {
	label      string
	texture    backend.Texture
	view       backend.TextureView
	sampler    backend.Sampler
	generation uint64

	samplerDesc backend.SamplerDescriptor
}

// Texture is a GPU image with its view, and for sampled textures its sampler.
type Texture interface {
	// Label returns the debug label of the texture.
	Label() string

	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texel format.
	Format() backend.TextureFormat

	// View returns the default view of the texture.
	View() backend.TextureView

	// Sampler returns the sampler of a sampled texture, or nil for a depth attachment.
	Sampler() backend.Sampler

	// Generation returns the surface generation a depth attachment was built for. Sampled textures return 0.
	Generation() uint64

	// BindGroupOptions returns the provider options that bind the view at binding 0 and the
	// sampler at binding 1, matching Slot.
	//
	// Returns:
	//   - []bind_group_provider.BindGroupProviderOption: the texture view and sampler options
	BindGroupOptions() []bind_group_provider.BindGroupProviderOption

	// Release releases the sampler, the view and the texture, in that order.
	Release()
}

var _ Texture = &texture{}

// NewSampledTexture creates an RGBA8UnormSrgb texture, uploads the staging pixels, and creates
// its view and sampler. The sampler defaults to nearest filtering with clamp-to-edge addressing.
//
// Parameters:
//   - device: the device that allocates the resources
//   - data: tightly packed RGBA8 pixels
//   - label: the debug label
//   - options: sampler overrides
//
// Returns:
//   - Texture: the sampled texture
//   - error: an ErrInvalidImage-caused error for bad input, or the device error; partial allocations are released
func NewSampledTexture(device backend.Device, data common.TextureStagingData, label string, options ...TextureBuilderOption) (Texture, error) {
	if data.Width == 0 || data.Height == 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "%s has zero extent %dx%d", label, data.Width, data.Height)
	}
	if want := int(data.BytesPerRow()) * int(data.Height); len(data.Pixels) != want {
		return nil, errors.Wrapf(ErrInvalidImage, "%s has %d pixel bytes, want %d", label, len(data.Pixels), want)
	}

	t := &texture{
		label: label,
		samplerDesc: backend.SamplerDescriptor{
			Label:        label + " Sampler",
			AddressModeU: backend.AddressModeClampToEdge,
			AddressModeV: backend.AddressModeClampToEdge,
			AddressModeW: backend.AddressModeClampToEdge,
			MagFilter:    backend.FilterModeNearest,
			MinFilter:    backend.FilterModeNearest,
			MipmapFilter: backend.FilterModeNearest,
		},
	}
	for _, option := range options {
		option(t)
	}

	tex, err := device.CreateTexture(backend.TextureDescriptor{
		Label:  label,
		Width:  data.Width,
		Height: data.Height,
		Format: SampledFormat,
		Usage:  backend.TextureUsageTextureBinding | backend.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create texture %s", label)
	}
	t.texture = tex

	if err := device.WriteTexture(tex, data.Pixels, data.BytesPerRow()); err != nil {
		t.Release()
		return nil, errors.Wrapf(err, "upload texture %s", label)
	}
	if t.view, err = tex.CreateView(); err != nil {
		t.Release()
		return nil, errors.Wrapf(err, "create view of %s", label)
	}
	if t.sampler, err = device.CreateSampler(t.samplerDesc); err != nil {
		t.Release()
		return nil, errors.Wrapf(err, "create sampler of %s", label)
	}
	return t, nil
}

// NewDepthTexture creates a Depth32Float render attachment and its view for the given surface generation.
//
// Parameters:
//   - device: the device that allocates the resources
//   - width: the surface width
//   - height: the surface height
//   - generation: the surface generation the attachment belongs to
//
// Returns:
//   - Texture: the depth attachment
//   - error: an ErrInvalidImage-caused error for zero extent, or the device error
func NewDepthTexture(device backend.Device, width, height uint32, generation uint64) (Texture, error) {
	if width == 0 || height == 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "depth attachment has zero extent %dx%d", width, height)
	}
	label := fmt.Sprintf("Depth Texture (gen %d)", generation)
	tex, err := device.CreateTexture(backend.TextureDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: DepthFormat,
		Usage:  backend.TextureUsageRenderAttachment | backend.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create depth texture")
	}
	t := &texture{label: label, texture: tex, generation: generation}
	if t.view, err = tex.CreateView(); err != nil {
		t.Release()
		return nil, errors.Wrap(err, "create depth view")
	}
	return t, nil
}

// White returns a 1x1 opaque white image, bound in place of a diffuse texture when a model has none.
func White() common.TextureStagingData {
	return common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
}

// Slot describes the diffuse texture bind group: the view at binding 0 and the sampler at
// binding 1, both visible to the fragment stage.
//
// Parameters:
//   - group: the bind group index the slot occupies
//
// Returns:
//   - binding.Slot: the slot declaration
func Slot(group uint32) binding.Slot {
	return binding.Slot{
		Group: group,
		Name:  "diffuse",
		Entries: []binding.Entry{
			{Binding: 0, Name: "t_diffuse", Kind: backend.BindingKindTexture, Visibility: backend.ShaderStageFragment},
			{Binding: 1, Name: "s_diffuse", Kind: backend.BindingKindSampler, Visibility: backend.ShaderStageFragment},
		},
	}
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Width() uint32 {
	return t.texture.Width()
}

func (t *texture) Height() uint32 {
	return t.texture.Height()
}

func (t *texture) Format() backend.TextureFormat {
	return t.texture.Format()
}

func (t *texture) View() backend.TextureView {
	return t.view
}

func (t *texture) Sampler() backend.Sampler {
	return t.sampler
}

func (t *texture) Generation() uint64 {
	return t.generation
}

func (t *texture) BindGroupOptions() []bind_group_provider.BindGroupProviderOption {
	return []bind_group_provider.BindGroupProviderOption{
		bind_group_provider.WithTextureView(0, t.view),
		bind_group_provider.WithSampler(1, t.sampler),
	}
}

func (t *texture) Release() {
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
	}
}
