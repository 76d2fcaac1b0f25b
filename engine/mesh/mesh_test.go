package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/recording"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() common.ImportedMesh {
	n := [3]float32{0, 0, 1}
	return common.ImportedMesh{
		Name: "quad",
		Vertices: []common.ImportedVertex{
			{Position: [3]float32{-1, -1, 0}, Normal: n, UV: [2]float32{0, 1}},
			{Position: [3]float32{1, -1, 0}, Normal: n, UV: [2]float32{1, 1}},
			{Position: [3]float32{1, 1, 0}, Normal: n, UV: [2]float32{1, 0}},
			{Position: [3]float32{-1, 1, 0}, Normal: n, UV: [2]float32{0, 0}},
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: 0,
	}
}

func TestNewMesh(t *testing.T) {
	dev := recording.NewDevice()
	m, err := NewMesh(dev, quad())
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Name())
	assert.Equal(t, uint32(4), m.VertexCount())
	assert.Equal(t, uint32(6), m.IndexCount())
	assert.Equal(t, 0, m.MaterialIndex())

	require.Len(t, dev.Buffers, 2)
	vb, ib := dev.Buffers[0], dev.Buffers[1]
	assert.Equal(t, uint64(4*VertexStride), vb.Descriptor.Size)
	assert.NotZero(t, vb.Descriptor.Usage&backend.BufferUsageVertex)
	assert.Equal(t, uint64(6*4), ib.Descriptor.Size)
	assert.NotZero(t, ib.Descriptor.Usage&backend.BufferUsageIndex)

	// second vertex: position x at 32, normal z at 52, uv at 56
	assert.Equal(t, float32(1), common.Float32At(vb.Data, 32))
	assert.Equal(t, float32(1), common.Float32At(vb.Data, 52))
	assert.Equal(t, float32(1), common.Float32At(vb.Data, 56))
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, ib.Data[:12])

	m.Release()
	assert.True(t, vb.Released)
	assert.True(t, ib.Released)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*common.ImportedMesh)
	}{
		{"no vertices", func(m *common.ImportedMesh) { m.Vertices = nil }},
		{"no indices", func(m *common.ImportedMesh) { m.Indices = nil }},
		{"partial triangle", func(m *common.ImportedMesh) { m.Indices = m.Indices[:5] }},
		{"index out of range", func(m *common.ImportedMesh) { m.Indices[4] = 4 }},
		{"nan normal", func(m *common.ImportedMesh) { m.Vertices[2].Normal[1] = math32.NaN() }},
		{"infinite uv", func(m *common.ImportedMesh) { m.Vertices[0].UV[0] = math32.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.mutate(&m)
			assert.True(t, errors.Is(Validate(m), ErrInvalidMesh))

			dev := recording.NewDevice()
			_, err := NewMesh(dev, m)
			assert.True(t, errors.Is(err, ErrInvalidMesh))
			assert.Empty(t, dev.Buffers)
		})
	}
	assert.NoError(t, Validate(quad()))
}

func TestNewMeshReleasesOnFailure(t *testing.T) {
	dev := recording.NewDevice()
	dev.FailNext(recording.OpCreateBuffer, nil)
	dev.FailNext(recording.OpCreateBuffer, errors.New("out of memory"))

	_, err := NewMesh(dev, quad())
	require.Error(t, err)
	require.Len(t, dev.Buffers, 1)
	assert.True(t, dev.Buffers[0].Released)
}

func TestVertexLayout(t *testing.T) {
	var stride uint64
	for _, a := range VertexLayout.Attributes {
		assert.Equal(t, stride, a.Offset)
		stride += a.Format.Size()
	}
	assert.Equal(t, VertexLayout.ArrayStride, stride)

	buf := GPUVertex{Position: [3]float32{1, 2, 3}, TexCoord: [2]float32{0.5, 0.25}}.Marshal()
	require.Len(t, buf, VertexStride)
	assert.Equal(t, float32(3), common.Float32At(buf, 8))
	assert.Equal(t, float32(0.25), common.Float32At(buf, 28))
}
