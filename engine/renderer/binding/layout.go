// Package binding describes the contract between host-side GPU resources and the WGSL program:
// declarative uniform block layouts, the bind group slot schema, and a startup check of both
// against the program source.
package binding

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/pkg/errors"
)

var (
	// ErrLayout is the cause of every uniform layout validation failure.
	ErrLayout = errors.New("invalid uniform layout")

	// ErrContract is the cause of every schema/program mismatch.
	ErrContract = errors.New("binding contract violated")
)

// uniformStructAlign is the minimum alignment of a struct in the WGSL uniform address space.
const uniformStructAlign = 16

// FieldType is the WGSL type of a uniform field.
type FieldType int

const (
	FieldF32 FieldType = iota
	FieldVec2
	FieldVec3
	FieldVec4
	FieldMat4
)

type fieldTypeInfo struct {
	size       uint64
	align      uint64
	components int
	wgsl       []string
}

// fieldTypeInfos follows the WGSL alignment and size table.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var fieldTypeInfos = map[FieldType]fieldTypeInfo{
	FieldF32:  {4, 4, 1, []string{"f32"}},
	FieldVec2: {8, 8, 2, []string{"vec2<f32>", "vec2f"}},
	FieldVec3: {12, 16, 3, []string{"vec3<f32>", "vec3f"}},
	FieldVec4: {16, 16, 4, []string{"vec4<f32>", "vec4f"}},
	FieldMat4: {64, 16, 16, []string{"mat4x4<f32>", "mat4x4f"}},
}

// Size returns the byte size of the type.
func (t FieldType) Size() uint64 { return fieldTypeInfos[t].size }

// Align returns the byte alignment of the type.
func (t FieldType) Align() uint64 { return fieldTypeInfos[t].align }

// Components returns the number of float32 components of the type.
func (t FieldType) Components() int { return fieldTypeInfos[t].components }

func (t FieldType) String() string {
	if info, ok := fieldTypeInfos[t]; ok {
		return info.wgsl[0]
	}
	return "unknown"
}

// fieldTypeFromWGSL resolves a WGSL type name to a FieldType.
func fieldTypeFromWGSL(name string) (FieldType, bool) {
	for t, info := range fieldTypeInfos {
		for _, n := range info.wgsl {
			if n == name {
				return t, true
			}
		}
	}
	return 0, false
}

// Field is one member of a uniform block.
type Field struct {
	Name   string
	Type   FieldType
	Offset uint64
}

// Size returns the byte size of the field.
func (f Field) Size() uint64 { return f.Type.Size() }

// End returns the byte offset just past the field.
func (f Field) End() uint64 { return f.Offset + f.Type.Size() }

// UniformLayout is a declarative description of a uniform block: an ordered list of named,
// typed fields at explicit byte offsets. Padding is implied by the gaps between fields.
type UniformLayout struct {
	Name   string
	Fields []Field
}

// NewUniformLayout builds and validates a uniform layout.
//
// Parameters:
//   - name: the WGSL struct name the layout mirrors
//   - fields: the fields in ascending offset order
//
// Returns:
//   - UniformLayout: the validated layout
//   - error: an ErrLayout-caused error if validation fails
func NewUniformLayout(name string, fields ...Field) (UniformLayout, error) {
	l := UniformLayout{Name: name, Fields: fields}
	if err := l.Validate(); err != nil {
		return UniformLayout{}, err
	}
	return l, nil
}

// MustUniformLayout is NewUniformLayout for package-level declarations. It panics on an
// invalid layout so a bad declaration fails at program start.
func MustUniformLayout(name string, fields ...Field) UniformLayout {
	l, err := NewUniformLayout(name, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Validate checks the layout against the WGSL uniform address space rules: every field is
// aligned to its type, fields are in ascending offset order, and no two fields overlap.
//
// Returns:
//   - error: an ErrLayout-caused error describing the first violation, or nil
func (l UniformLayout) Validate() error {
	if len(l.Fields) == 0 {
		return errors.Wrapf(ErrLayout, "%s has no fields", l.Name)
	}
	seen := make(map[string]bool, len(l.Fields))
	var end uint64
	for i, f := range l.Fields {
		info, ok := fieldTypeInfos[f.Type]
		if !ok {
			return errors.Wrapf(ErrLayout, "%s.%s has unknown type %d", l.Name, f.Name, f.Type)
		}
		if f.Name == "" {
			return errors.Wrapf(ErrLayout, "%s field %d has no name", l.Name, i)
		}
		if seen[f.Name] {
			return errors.Wrapf(ErrLayout, "%s.%s declared twice", l.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Offset%info.align != 0 {
			return errors.Wrapf(ErrLayout, "%s.%s at offset %d is not %d-byte aligned", l.Name, f.Name, f.Offset, info.align)
		}
		if f.Offset < end {
			return errors.Wrapf(ErrLayout, "%s.%s at offset %d overlaps the previous field ending at %d", l.Name, f.Name, f.Offset, end)
		}
		end = f.End()
	}
	return nil
}

// Align returns the struct alignment in the uniform address space.
func (l UniformLayout) Align() uint64 {
	align := uint64(uniformStructAlign)
	for _, f := range l.Fields {
		if a := f.Type.Align(); a > align {
			align = a
		}
	}
	return align
}

// Size returns the byte size of the block: the end of the last field rounded up to the struct alignment.
func (l UniformLayout) Size() uint64 {
	var end uint64
	for _, f := range l.Fields {
		if f.End() > end {
			end = f.End()
		}
	}
	return common.RoundUp(l.Align(), end)
}

// Field looks up a field by name.
func (l UniformLayout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Values maps field names to their float32 components. A mat4 is 16 column-major components.
type Values map[string][]float32

// Encode serializes values into a zero-padded little-endian byte block of Size() bytes.
// Every field must be supplied with exactly its component count, and no unknown names are allowed.
//
// Parameters:
//   - values: the field values to encode
//
// Returns:
//   - []byte: the encoded block
//   - error: an ErrLayout-caused error on a missing, unknown or mis-sized value
func (l UniformLayout) Encode(values Values) ([]byte, error) {
	buf := make([]byte, l.Size())
	for _, f := range l.Fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrLayout, "%s.%s has no value", l.Name, f.Name)
		}
		if len(v) != f.Type.Components() {
			return nil, errors.Wrapf(ErrLayout, "%s.%s needs %d components, got %d", l.Name, f.Name, f.Type.Components(), len(v))
		}
		common.PutFloat32s(buf, int(f.Offset), v...)
	}
	if len(values) != len(l.Fields) {
		unknown := make([]string, 0)
		for name := range values {
			if _, ok := l.Field(name); !ok {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		return nil, errors.Wrapf(ErrLayout, "%s has no fields named %v", l.Name, unknown)
	}
	return buf, nil
}

// MustEncode is Encode for values produced by this module's own typed uniforms, where a
// mismatch is a programming error.
func (l UniformLayout) MustEncode(values Values) []byte {
	buf, err := l.Encode(values)
	if err != nil {
		panic(err)
	}
	return buf
}
