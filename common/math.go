package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OpenGLToWebGPU remaps clip-space depth from the OpenGL [-1, 1] range produced by
// mgl32.Perspective into the [0, 1] range WebGPU expects. Column-major.
var OpenGLToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// PutFloat32s writes values into dst as little-endian float32s starting at offset.
//
// Parameters:
//   - dst: the destination buffer (must hold offset + 4*len(values) bytes)
//   - offset: byte offset of the first value
//   - values: the values to write
func PutFloat32s(dst []byte, offset int, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[offset+i*4:], math.Float32bits(v))
	}
}

// Float32At reads a little-endian float32 from src at offset.
//
// Parameters:
//   - src: the source buffer
//   - offset: byte offset of the value
//
// Returns:
//   - float32: the decoded value
func Float32At(src []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src[offset:]))
}

// RoundUp rounds value up to the next multiple of alignment. Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to a multiple of alignment
func RoundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// PutUint32 writes v into dst as a little-endian uint32 at offset.
//
// Parameters:
//   - dst: the destination buffer (must hold offset + 4 bytes)
//   - offset: byte offset of the value
//   - v: the value to write
func PutUint32(dst []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(dst[offset:], v)
}
