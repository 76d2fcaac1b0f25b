// Package material turns an imported material record into GPU resources: a sampled diffuse
// texture with its bind group, and the shading coefficients uniform with its bind group.
package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"
	"github.com/pkg/errors"
)

// Bind group indices of the lit program that a material occupies.
const (
	TextureGroup uint32 = 1
	UniformGroup uint32 = 2
)

// material is the implementation of the Material interface.
type material struct {
	name      string
	ambient   [3]float32
	diffuse   [3]float32
	specular  [3]float32
	shininess float32

	textureOptions []texture.TextureBuilderOption

	// The following fields are GPU resources owned by the material and released by Release.

	diffuseTexture texture.Texture
	textureGroup   bind_group_provider.BindGroupProvider
	uniformGroup   bind_group_provider.BindGroupProvider
}

// Material defines the interface for an uploaded Blinn-Phong material.
//
// Shading coefficients are fixed at construction. The diffuse texture is bound through its own
// group, separate from the uniform group, so the two can be laid out at different slots.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Ambient retrieves the ambient reflectivity.
	//
	// Returns:
	//   - [3]float32: the ambient color as RGB
	Ambient() [3]float32

	// Diffuse retrieves the diffuse reflectivity.
	//
	// Returns:
	//   - [3]float32: the diffuse color as RGB
	Diffuse() [3]float32

	// Specular retrieves the specular reflectivity.
	//
	// Returns:
	//   - [3]float32: the specular color as RGB
	Specular() [3]float32

	// Shininess retrieves the specular exponent.
	//
	// Returns:
	//   - float32: the shininess
	Shininess() float32

	// Uniform returns the material as its GPU uniform.
	//
	// Returns:
	//   - GPUMaterialUniform: the uniform value
	Uniform() GPUMaterialUniform

	// Texture retrieves the sampled diffuse texture.
	//
	// Returns:
	//   - texture.Texture: the diffuse texture
	Texture() texture.Texture

	// TextureBindGroup retrieves the provider that binds the diffuse texture and its sampler.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the texture bind group provider
	TextureBindGroup() bind_group_provider.BindGroupProvider

	// UniformBindGroup retrieves the provider that binds the material uniform.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the uniform bind group provider
	UniformBindGroup() bind_group_provider.BindGroupProvider

	// Release releases both bind groups and the texture, in reverse creation order.
	Release()
}

var _ Material = &material{}

// NewMaterial uploads an imported material. A material without a decoded diffuse image is
// bound with a 1x1 white texture, so the texel factor of the lit program is neutral.
//
// Parameters:
//   - device: the device that allocates the resources
//   - src: the imported material record
//   - textureLayout: the bind group layout created from texture.Slot
//   - uniformLayout: the bind group layout created from Slot
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the uploaded material
//   - error: the first creation error; partial allocations are released
func NewMaterial(device backend.Device, src common.ImportedMaterial, textureLayout, uniformLayout backend.BindGroupLayout, options ...MaterialBuilderOption) (Material, error) {
	m := &material{
		name:      src.Name,
		ambient:   src.Ambient,
		diffuse:   src.Diffuse,
		specular:  src.Specular,
		shininess: src.Shininess,
	}
	for _, opt := range options {
		opt(m)
	}

	image := texture.White()
	if src.DiffuseTexture != nil {
		image = *src.DiffuseTexture
	}

	var err error
	m.diffuseTexture, err = texture.NewSampledTexture(device, image, m.name+" Diffuse Texture", m.textureOptions...)
	if err != nil {
		return nil, errors.Wrapf(err, "material %s", m.name)
	}

	m.textureGroup, err = bind_group_provider.NewBindGroupProvider(device, texture.Slot(TextureGroup), textureLayout,
		append(m.diffuseTexture.BindGroupOptions(), bind_group_provider.WithLabel(m.name+" Texture"))...)
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "material %s texture bind group", m.name)
	}

	m.uniformGroup, err = bind_group_provider.NewBindGroupProvider(device, Slot(UniformGroup), uniformLayout,
		bind_group_provider.WithLabel(m.name+" Uniform"),
		bind_group_provider.WithUniformData(0, m.Uniform().Marshal()),
	)
	if err != nil {
		m.Release()
		return nil, errors.Wrapf(err, "material %s uniform bind group", m.name)
	}
	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Ambient() [3]float32 {
	return m.ambient
}

func (m *material) Diffuse() [3]float32 {
	return m.diffuse
}

func (m *material) Specular() [3]float32 {
	return m.specular
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) Uniform() GPUMaterialUniform {
	return GPUMaterialUniform{
		Ambient:   m.ambient,
		Diffuse:   m.diffuse,
		Specular:  m.specular,
		Shininess: m.shininess,
	}
}

func (m *material) Texture() texture.Texture {
	return m.diffuseTexture
}

func (m *material) TextureBindGroup() bind_group_provider.BindGroupProvider {
	return m.textureGroup
}

func (m *material) UniformBindGroup() bind_group_provider.BindGroupProvider {
	return m.uniformGroup
}

func (m *material) Release() {
	if m.uniformGroup != nil {
		m.uniformGroup.Release()
		m.uniformGroup = nil
	}
	if m.textureGroup != nil {
		m.textureGroup.Release()
		m.textureGroup = nil
	}
	if m.diffuseTexture != nil {
		m.diffuseTexture.Release()
		m.diffuseTexture = nil
	}
}
