package camera

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformLayout mirrors the WGSL CameraUniform struct (64 bytes).
var UniformLayout = binding.MustUniformLayout("CameraUniform",
	binding.Field{Name: "view_proj", Type: binding.FieldMat4, Offset: 0},
)

// GPUCameraUniform is the host-side value of the camera uniform buffer.
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4
}

// Marshal serializes the uniform through UniformLayout for GPU upload.
//
// Returns:
//   - []byte: the 64-byte uniform block
func (g GPUCameraUniform) Marshal() []byte {
	return UniformLayout.MustEncode(binding.Values{"view_proj": g.ViewProj[:]})
}

// Slot describes the camera bind group: the uniform at binding 0, visible to the vertex stage.
//
// Parameters:
//   - group: the bind group index the slot occupies
//
// Returns:
//   - binding.Slot: the slot declaration
func Slot(group uint32) binding.Slot {
	return binding.Slot{
		Group: group,
		Name:  "camera",
		Entries: []binding.Entry{{
			Binding:    0,
			Name:       "camera",
			Kind:       backend.BindingKindUniform,
			Visibility: backend.ShaderStageVertex,
			Layout:     &UniformLayout,
		}},
	}
}
