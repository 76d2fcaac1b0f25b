package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

// Entry is one binding within a slot.
type Entry struct {
	Binding    uint32
	Name       string
	Kind       backend.BindingKind
	Visibility backend.ShaderStage

	// Layout is the uniform block layout; required for uniform entries, nil otherwise.
	Layout *UniformLayout
}

// Slot is one bind group: its group index and its entries in binding order.
type Slot struct {
	Group   uint32
	Name    string
	Entries []Entry
}

// Entry looks up an entry by binding index.
func (s Slot) Entry(binding uint32) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return Entry{}, false
}

// Uniform returns the first uniform entry of the slot.
func (s Slot) Uniform() (Entry, bool) {
	for _, e := range s.Entries {
		if e.Kind == backend.BindingKindUniform {
			return e, true
		}
	}
	return Entry{}, false
}

// LayoutDescriptor converts the slot into a bind group layout descriptor.
// Uniform entries carry their block size as the minimum binding size.
func (s Slot) LayoutDescriptor() backend.BindGroupLayoutDescriptor {
	entries := make([]backend.BindGroupLayoutEntry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = backend.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: e.Visibility,
			Kind:       e.Kind,
		}
		if e.Layout != nil {
			entries[i].MinBindingSize = e.Layout.Size()
		}
	}
	return backend.BindGroupLayoutDescriptor{
		Label:   fmt.Sprintf("%s Layout (group %d)", s.Name, s.Group),
		Entries: entries,
	}
}

// Schema is the ordered set of bind group slots a pipeline is built against.
type Schema struct {
	Slots []Slot
}

// NewSchema builds and validates a schema from slots given in group order.
//
// Parameters:
//   - slots: the slots, whose Group must equal their position
//
// Returns:
//   - Schema: the validated schema
//   - error: an ErrContract-caused error if validation fails
func NewSchema(slots ...Slot) (Schema, error) {
	s := Schema{Slots: slots}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// Validate checks that groups are contiguous from 0, bindings are unique within a slot,
// every entry is visible to at least one stage, and every uniform entry has a valid layout.
func (s Schema) Validate() error {
	if len(s.Slots) == 0 {
		return errors.Wrap(ErrContract, "schema has no slots")
	}
	for i, slot := range s.Slots {
		if slot.Group != uint32(i) {
			return errors.Wrapf(ErrContract, "slot %q has group %d at position %d", slot.Name, slot.Group, i)
		}
		if len(slot.Entries) == 0 {
			return errors.Wrapf(ErrContract, "slot %q has no entries", slot.Name)
		}
		bindings := make(map[uint32]bool, len(slot.Entries))
		for _, e := range slot.Entries {
			if bindings[e.Binding] {
				return errors.Wrapf(ErrContract, "slot %q binds %d twice", slot.Name, e.Binding)
			}
			bindings[e.Binding] = true
			if e.Visibility == 0 {
				return errors.Wrapf(ErrContract, "slot %q binding %d is visible to no stage", slot.Name, e.Binding)
			}
			switch e.Kind {
			case backend.BindingKindUniform:
				if e.Layout == nil {
					return errors.Wrapf(ErrContract, "slot %q binding %d is a uniform without a layout", slot.Name, e.Binding)
				}
				if err := e.Layout.Validate(); err != nil {
					return errors.Wrapf(err, "slot %q binding %d", slot.Name, e.Binding)
				}
			default:
				if e.Layout != nil {
					return errors.Wrapf(ErrContract, "slot %q binding %d is a %s with a uniform layout", slot.Name, e.Binding, e.Kind)
				}
			}
		}
	}
	return nil
}

// Slot returns the slot at group, if present.
func (s Schema) Slot(group uint32) (Slot, bool) {
	if int(group) >= len(s.Slots) {
		return Slot{}, false
	}
	return s.Slots[group], true
}

// Len returns the number of slots.
func (s Schema) Len() int {
	return len(s.Slots)
}
