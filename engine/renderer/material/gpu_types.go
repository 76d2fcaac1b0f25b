package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
)

// UniformLayout mirrors the WGSL MaterialUniform struct. The block is 64 bytes: shininess ends
// at 52 and the struct rounds up to 16.
var UniformLayout = binding.MustUniformLayout("MaterialUniform",
	binding.Field{Name: "ambient", Type: binding.FieldVec3, Offset: 0},
	binding.Field{Name: "diffuse", Type: binding.FieldVec3, Offset: 16},
	binding.Field{Name: "specular", Type: binding.FieldVec3, Offset: 32},
	binding.Field{Name: "shininess", Type: binding.FieldF32, Offset: 48},
)

// GPUMaterialUniform is the host-side value of the material uniform buffer.
type GPUMaterialUniform struct {
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
}

// Marshal serializes the uniform through UniformLayout for GPU upload.
//
// Returns:
//   - []byte: the 64-byte uniform block
func (g GPUMaterialUniform) Marshal() []byte {
	return UniformLayout.MustEncode(binding.Values{
		"ambient":   g.Ambient[:],
		"diffuse":   g.Diffuse[:],
		"specular":  g.Specular[:],
		"shininess": {g.Shininess},
	})
}

// Slot describes the material bind group: the uniform at binding 0, visible to the fragment stage.
//
// Parameters:
//   - group: the bind group index the slot occupies
//
// Returns:
//   - binding.Slot: the slot declaration
func Slot(group uint32) binding.Slot {
	return binding.Slot{
		Group: group,
		Name:  "material",
		Entries: []binding.Entry{{
			Binding:    0,
			Name:       "material",
			Kind:       backend.BindingKindUniform,
			Visibility: backend.ShaderStageFragment,
			Layout:     &UniformLayout,
		}},
	}
}
