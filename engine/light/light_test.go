package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, [3]float32{0, 2, -3}, l.Position())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
}

func TestMarshal(t *testing.T) {
	l := NewLight(WithPosition(1, 2, 3), WithColor(0.5, 0.25, 1))
	buf := l.Uniform().Marshal()
	require.Len(t, buf, 32)

	expected := make([]byte, 32)
	common.PutFloat32s(expected, 0, 1, 2, 3)
	common.PutFloat32s(expected, 16, 0.5, 0.25, 1)
	assert.Equal(t, expected, buf)
}

func TestSlot(t *testing.T) {
	s := Slot(3)
	assert.Equal(t, uint32(3), s.Group)

	desc := s.LayoutDescriptor()
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, backend.ShaderStageVertex|backend.ShaderStageFragment, desc.Entries[0].Visibility)
	assert.Equal(t, uint64(32), desc.Entries[0].MinBindingSize)
}
