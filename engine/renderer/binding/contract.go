package binding

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/pkg/errors"
)

// CheckShader verifies the schema against the program's resource declarations. Every schema
// entry must be declared at the same group and binding with the same kind, every uniform
// entry's layout must match the declared struct member for member, and the program must not
// declare a resource the schema does not provide.
//
// Parameters:
//   - sh: the reflected program
//
// Returns:
//   - error: an ErrContract-caused error naming the first mismatch, or nil
func (s Schema) CheckShader(sh shader.Shader) error {
	for _, slot := range s.Slots {
		for _, e := range slot.Entries {
			d, ok := sh.Declaration(slot.Group, e.Binding)
			if !ok {
				return errors.Wrapf(ErrContract, "%s declares nothing at group %d binding %d (%s.%s)",
					sh.Key(), slot.Group, e.Binding, slot.Name, e.Name)
			}
			if !d.Known {
				return errors.Wrapf(ErrContract, "%s declares unsupported resource %s: %s at group %d binding %d",
					sh.Key(), d.Name, d.TypeName, d.Group, d.Binding)
			}
			if d.Kind != e.Kind {
				return errors.Wrapf(ErrContract, "%s declares %s as a %s at group %d binding %d, schema expects a %s",
					sh.Key(), d.Name, d.Kind, d.Group, d.Binding, e.Kind)
			}
			if e.Kind == backend.BindingKindUniform {
				if err := checkUniform(sh, d, *e.Layout); err != nil {
					return err
				}
			}
		}
	}

	for _, d := range sh.Declarations() {
		slot, ok := s.Slot(d.Group)
		if !ok {
			return errors.Wrapf(ErrContract, "%s declares %s in group %d, schema has %d groups",
				sh.Key(), d.Name, d.Group, s.Len())
		}
		if _, ok := slot.Entry(d.Binding); !ok {
			return errors.Wrapf(ErrContract, "%s declares %s at group %d binding %d, slot %q has no such binding",
				sh.Key(), d.Name, d.Group, d.Binding, slot.Name)
		}
	}
	return nil
}

// checkUniform compares a host uniform layout against the struct the program declares for it.
func checkUniform(sh shader.Shader, d shader.Declaration, layout UniformLayout) error {
	st, ok := sh.StructLayout(d.TypeName)
	if !ok {
		return errors.Wrapf(ErrContract, "%s: struct %s of %s is not declared or has an unresolvable member",
			sh.Key(), d.TypeName, d.Name)
	}

	members := 0
	for _, sf := range st.Fields {
		if sf.Builtin {
			continue
		}
		members++
		f, ok := layout.Field(sf.Name)
		if !ok {
			return errors.Wrapf(ErrContract, "%s.%s has no host field in %s", st.Name, sf.Name, layout.Name)
		}
		ft, ok := fieldTypeFromWGSL(sf.TypeName)
		if !ok || ft != f.Type {
			return errors.Wrapf(ErrContract, "%s.%s is %s, host field is %s", st.Name, sf.Name, sf.TypeName, f.Type)
		}
		if sf.Offset != f.Offset {
			return errors.Wrapf(ErrContract, "%s.%s is at offset %d, host field is at %d", st.Name, sf.Name, sf.Offset, f.Offset)
		}
	}
	if members != len(layout.Fields) {
		return errors.Wrapf(ErrContract, "%s has %d members, %s has %d fields", st.Name, members, layout.Name, len(layout.Fields))
	}
	if st.Size != layout.Size() {
		return errors.Wrapf(ErrContract, "%s is %d bytes, %s is %d", st.Name, st.Size, layout.Name, layout.Size())
	}
	return nil
}

// CheckVertexInput verifies that the program's vertex input matches the host vertex record.
// Attributes are matched by shader location; format and offset must agree, and so must the stride.
//
// Parameters:
//   - sh: the reflected program
//   - layout: the host vertex buffer layout bound at slot 0
//
// Returns:
//   - error: an ErrContract-caused error naming the first mismatch, or nil
func CheckVertexInput(sh shader.Shader, layout backend.VertexBufferLayout) error {
	inputs := sh.VertexInputs()
	if len(inputs) != 1 {
		return errors.Wrapf(ErrContract, "%s consumes %d vertex buffers, host binds 1", sh.Key(), len(inputs))
	}
	in := inputs[0]
	if in.ArrayStride != layout.ArrayStride {
		return errors.Wrapf(ErrContract, "%s vertex stride is %d, host stride is %d", sh.Key(), in.ArrayStride, layout.ArrayStride)
	}
	if len(in.Attributes) != len(layout.Attributes) {
		return errors.Wrapf(ErrContract, "%s reads %d vertex attributes, host provides %d",
			sh.Key(), len(in.Attributes), len(layout.Attributes))
	}
	host := make(map[uint32]backend.VertexAttribute, len(layout.Attributes))
	for _, a := range layout.Attributes {
		host[a.ShaderLocation] = a
	}
	for _, a := range in.Attributes {
		h, ok := host[a.ShaderLocation]
		if !ok {
			return errors.Wrapf(ErrContract, "%s reads @location(%d), host provides none", sh.Key(), a.ShaderLocation)
		}
		if h.Format != a.Format || h.Offset != a.Offset {
			return errors.Wrapf(ErrContract, "%s @location(%d) is format %d at %d, host is format %d at %d",
				sh.Key(), a.ShaderLocation, a.Format, a.Offset, h.Format, h.Offset)
		}
	}
	return nil
}
