package mesh

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
)

// VertexStride is the byte size of one interleaved GPUVertex record.
const VertexStride = 32

// VertexLayout describes GPUVertex to the pipeline: position @location(0), normal @location(1)
// and texture coordinate @location(2), interleaved in a single buffer.
var VertexLayout = backend.VertexBufferLayout{
	ArrayStride: VertexStride,
	Attributes: []backend.VertexAttribute{
		{Format: backend.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: backend.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: backend.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct of both built-in programs.
// Size: 32 bytes, no padding required.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Put serializes the vertex into dst, which must hold VertexStride bytes.
//
// Parameters:
//   - dst: the destination record
func (g GPUVertex) Put(dst []byte) {
	common.PutFloat32s(dst, 0, g.Position[:]...)
	common.PutFloat32s(dst, 12, g.Normal[:]...)
	common.PutFloat32s(dst, 24, g.TexCoord[:]...)
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g GPUVertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	g.Put(buf)
	return buf
}

// MarshalVertices packs imported vertices into one interleaved vertex buffer payload.
//
// Parameters:
//   - vertices: the loader's vertices
//
// Returns:
//   - []byte: len(vertices) * VertexStride bytes
func MarshalVertices(vertices []common.ImportedVertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		GPUVertex{Position: v.Position, Normal: v.Normal, TexCoord: v.UV}.Put(buf[i*VertexStride:])
	}
	return buf
}

// MarshalIndices packs indices as little-endian uint32.
//
// Parameters:
//   - indices: the triangle-list indices
//
// Returns:
//   - []byte: len(indices) * 4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		common.PutUint32(buf, i*4, idx)
	}
	return buf
}
