package light

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
)

// UniformLayout mirrors the WGSL LightUniform struct (32 bytes).
var UniformLayout = binding.MustUniformLayout("LightUniform",
	binding.Field{Name: "position", Type: binding.FieldVec3, Offset: 0},
	binding.Field{Name: "color", Type: binding.FieldVec3, Offset: 16},
)

// GPULightUniform is the host-side value of the light uniform buffer.
type GPULightUniform struct {
	Position [3]float32
	Color    [3]float32
}

// Marshal serializes the uniform through UniformLayout for GPU upload.
//
// Returns:
//   - []byte: the 32-byte uniform block
func (g GPULightUniform) Marshal() []byte {
	return UniformLayout.MustEncode(binding.Values{
		"position": g.Position[:],
		"color":    g.Color[:],
	})
}

// Slot describes the light bind group: the uniform at binding 0, visible to both stages.
//
// Parameters:
//   - group: the bind group index the slot occupies
//
// Returns:
//   - binding.Slot: the slot declaration
func Slot(group uint32) binding.Slot {
	return binding.Slot{
		Group: group,
		Name:  "light",
		Entries: []binding.Entry{{
			Binding:    0,
			Name:       "light",
			Kind:       backend.BindingKindUniform,
			Visibility: backend.ShaderStageVertex | backend.ShaderStageFragment,
			Layout:     &UniformLayout,
		}},
	}
}
