// Package mesh uploads loader geometry into one interleaved vertex buffer and one uint32 index buffer.
package mesh

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ErrInvalidMesh is the cause of every rejected mesh.
var ErrInvalidMesh = errors.New("invalid mesh")

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name          string
	vertexBuffer  backend.Buffer
	indexBuffer   backend.Buffer
	vertexCount   uint32
	indexCount    uint32
	materialIndex int
}

// Mesh defines the interface for an uploaded, immutable triangle-list mesh.
type Mesh interface {
	// Name returns the object name from the source file.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// VertexBuffer returns the interleaved vertex buffer bound at vertex slot 0.
	//
	// Returns:
	//   - backend.Buffer: the vertex buffer
	VertexBuffer() backend.Buffer

	// IndexBuffer returns the uint32 index buffer.
	//
	// Returns:
	//   - backend.Buffer: the index buffer
	IndexBuffer() backend.Buffer

	// VertexCount returns the number of vertex records.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// IndexCount returns the number of indices, always a multiple of 3.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// MaterialIndex returns the index of the mesh's material in the model, or -1.
	//
	// Returns:
	//   - int: the material index
	MaterialIndex() int

	// Release releases the index and vertex buffers.
	Release()
}

var _ Mesh = &mesh{}

// Validate checks the mesh invariants: at least one triangle, an index count that is a multiple
// of 3, every index in range, and finite vertex attributes.
//
// Parameters:
//   - m: the loader's mesh
//
// Returns:
//   - error: an ErrInvalidMesh-caused error describing the first violation, or nil
func Validate(m common.ImportedMesh) error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return errors.Wrapf(ErrInvalidMesh, "%s is empty (%d vertices, %d indices)", m.Name, len(m.Vertices), len(m.Indices))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Wrapf(ErrInvalidMesh, "%s has %d indices, not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return errors.Wrapf(ErrInvalidMesh, "%s index %d is %d, vertex count is %d", m.Name, i, idx, len(m.Vertices))
		}
	}
	for i, v := range m.Vertices {
		for _, f := range [8]float32{v.Position[0], v.Position[1], v.Position[2], v.Normal[0], v.Normal[1], v.Normal[2], v.UV[0], v.UV[1]} {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				return errors.Wrapf(ErrInvalidMesh, "%s vertex %d has a non-finite attribute", m.Name, i)
			}
		}
	}
	return nil
}

// NewMesh validates the loader's mesh and uploads it. Buffers are sized exactly to their data.
//
// Parameters:
//   - device: the device that allocates the buffers
//   - m: the loader's mesh
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: an ErrInvalidMesh-caused error, or the device error; partial allocations are released
func NewMesh(device backend.Device, m common.ImportedMesh) (Mesh, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}

	out := &mesh{
		name:          m.Name,
		vertexCount:   uint32(len(m.Vertices)),
		indexCount:    uint32(len(m.Indices)),
		materialIndex: m.MaterialIndex,
	}

	var err error
	out.vertexBuffer, err = upload(device, m.Name+" Vertex Buffer", backend.BufferUsageVertex, MarshalVertices(m.Vertices))
	if err != nil {
		return nil, err
	}
	out.indexBuffer, err = upload(device, m.Name+" Index Buffer", backend.BufferUsageIndex, MarshalIndices(m.Indices))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// upload creates a buffer sized to data and writes data into it.
func upload(device backend.Device, label string, usage backend.BufferUsage, data []byte) (backend.Buffer, error) {
	buf, err := device.CreateBuffer(backend.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | backend.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", label)
	}
	if err := device.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, errors.Wrapf(err, "write %s", label)
	}
	return buf, nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) VertexBuffer() backend.Buffer {
	return m.vertexBuffer
}

func (m *mesh) IndexBuffer() backend.Buffer {
	return m.indexBuffer
}

func (m *mesh) VertexCount() uint32 {
	return m.vertexCount
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) MaterialIndex() int {
	return m.materialIndex
}

func (m *mesh) Release() {
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
}
