// Package shader reflects WGSL source: entry points, resource declarations, struct layouts and
// the vertex input layout. The reflection is what the binding contract is checked against.
package shader

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

// ErrShader is the cause of every shader reflection failure.
var ErrShader = errors.New("invalid shader")

var (
	//go:embed assets/lit.wgsl
	litSource string

	//go:embed assets/unlit.wgsl
	unlitSource string
)

const (
	// LitKey is the key of the built-in Phong-lit program.
	LitKey = "lit"

	// UnlitKey is the key of the built-in texture-only program used when a model has no materials.
	UnlitKey = "unlit"
)

// shader is the implementation of the Shader interface.
// It holds the reflected program data required for pipeline creation and the contract check.
type shader struct {
	key          string
	source       string
	entryPoints  map[backend.ShaderStage]string
	declarations []Declaration
	structs      map[string]StructLayout
	vertexInputs []backend.VertexBufferLayout
}

// Shader defines the interface for a loaded and reflected WGSL program holding a vertex and a
// fragment entry point in a single module.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and logging.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for the given stage.
	//
	// Parameters:
	//   - stage: backend.ShaderStageVertex or backend.ShaderStageFragment
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main"), or empty if the stage has none
	EntryPoint(stage backend.ShaderStage) string

	// Declarations returns every @group/@binding resource declaration, sorted by group then binding.
	//
	// Returns:
	//   - []Declaration: the declarations
	Declarations() []Declaration

	// Declaration looks up the resource declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - Declaration: the declaration, if found
	//   - bool: true if a declaration exists at that position
	Declaration(group, binding uint32) (Declaration, bool)

	// StructLayout returns the resolved memory layout of a named struct.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - StructLayout: the layout, if found
	//   - bool: true if the struct was declared and could be resolved
	StructLayout(name string) (StructLayout, bool)

	// VertexInputs returns the vertex buffer layout consumed by the vertex entry point.
	//
	// Returns:
	//   - []backend.VertexBufferLayout: one layout per vertex buffer slot
	VertexInputs() []backend.VertexBufferLayout

	// Module returns the descriptor for compiling this program on a device.
	//
	// Returns:
	//   - backend.ShaderModuleDescriptor: the descriptor labelled with the shader key
	Module() backend.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reflects WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL program source containing @vertex and @fragment entry points
//
// Returns:
//   - Shader: the reflected shader
//   - error: an ErrShader-caused error if the source is empty or an entry point is missing
func NewShader(key, source string) (Shader, error) {
	if source == "" {
		return nil, errors.Wrapf(ErrShader, "%s has no source", key)
	}
	clean := stripComments(source)
	s := &shader{
		key:         key,
		source:      source,
		entryPoints: make(map[backend.ShaderStage]string, 2),
	}
	for _, stage := range []backend.ShaderStage{backend.ShaderStageVertex, backend.ShaderStageFragment} {
		ep := parseEntryPoint(clean, stage)
		if ep == "" {
			return nil, errors.Wrapf(ErrShader, "%s has no %s entry point", key, stage)
		}
		s.entryPoints[stage] = ep
	}

	structs := parseStructBlocks(clean)
	s.structs = computeStructLayouts(structs)
	s.declarations = parseDeclarations(clean)
	s.vertexInputs = parseVertexInputs(clean, structs)
	return s, nil
}

// Lit reflects the built-in Phong-lit program: camera, diffuse texture, material and light.
func Lit() (Shader, error) {
	return NewShader(LitKey, litSource)
}

// Unlit reflects the built-in program that samples the diffuse texture without lighting.
func Unlit() (Shader, error) {
	return NewShader(UnlitKey, unlitSource)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage backend.ShaderStage) string {
	return s.entryPoints[stage]
}

func (s *shader) Declarations() []Declaration {
	return s.declarations
}

func (s *shader) Declaration(group, binding uint32) (Declaration, bool) {
	for _, d := range s.declarations {
		if d.Group == group && d.Binding == binding {
			return d, true
		}
	}
	return Declaration{}, false
}

func (s *shader) StructLayout(name string) (StructLayout, bool) {
	l, ok := s.structs[name]
	return l, ok
}

func (s *shader) VertexInputs() []backend.VertexBufferLayout {
	return s.vertexInputs
}

func (s *shader) Module() backend.ShaderModuleDescriptor {
	return backend.ShaderModuleDescriptor{
		Label: s.key,
		Code:  s.source,
	}
}
