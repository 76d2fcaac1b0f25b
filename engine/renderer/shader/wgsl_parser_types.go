package shader

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"

// vertexFormatInfo holds the backend vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format backend.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool

	// alignOverride and sizeOverride hold @align(N) and @size(N), 0 when absent.
	alignOverride uint64
	sizeOverride  uint64
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// StructField is a resolved member of a WGSL struct.
type StructField struct {
	Name     string
	TypeName string
	Offset   uint64
	Size     uint64

	// Location is the @location index, or -1 when the field has none.
	Location int
	Builtin  bool
}

// StructLayout is the resolved memory layout of a WGSL struct.
type StructLayout struct {
	Name   string
	Size   uint64
	Align  uint64
	Fields []StructField
}

// Field looks up a member by name.
func (s StructLayout) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// Declaration is a resource variable declared with @group(N) @binding(M).
type Declaration struct {
	Group        uint32
	Binding      uint32
	AddressSpace string
	Name         string
	TypeName     string
	Kind         backend.BindingKind

	// Known is false when the declaration is not a uniform buffer, a 2D float texture or a
	// filtering sampler.
	Known bool
}
