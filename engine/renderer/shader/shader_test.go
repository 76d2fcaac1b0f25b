package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLitReflection(t *testing.T) {
	sh, err := Lit()
	require.NoError(t, err)

	assert.Equal(t, LitKey, sh.Key())
	assert.Equal(t, "vs_main", sh.EntryPoint(backend.ShaderStageVertex))
	assert.Equal(t, "fs_main", sh.EntryPoint(backend.ShaderStageFragment))

	decls := sh.Declarations()
	require.Len(t, decls, 5)
	want := []struct {
		group, binding uint32
		name           string
		kind           backend.BindingKind
	}{
		{0, 0, "camera", backend.BindingKindUniform},
		{1, 0, "t_diffuse", backend.BindingKindTexture},
		{1, 1, "s_diffuse", backend.BindingKindSampler},
		{2, 0, "material", backend.BindingKindUniform},
		{3, 0, "light", backend.BindingKindUniform},
	}
	for i, w := range want {
		assert.Equal(t, w.group, decls[i].Group)
		assert.Equal(t, w.binding, decls[i].Binding)
		assert.Equal(t, w.name, decls[i].Name)
		assert.Equal(t, w.kind, decls[i].Kind)
		assert.True(t, decls[i].Known, w.name)
	}

	d, ok := sh.Declaration(2, 0)
	require.True(t, ok)
	assert.Equal(t, "MaterialUniform", d.TypeName)
	assert.Equal(t, "uniform", d.AddressSpace)

	_, ok = sh.Declaration(4, 0)
	assert.False(t, ok)

	mod := sh.Module()
	assert.Equal(t, LitKey, mod.Label)
	assert.Equal(t, sh.Source(), mod.Code)
}

func TestLitStructLayouts(t *testing.T) {
	sh, err := Lit()
	require.NoError(t, err)

	cam, ok := sh.StructLayout("CameraUniform")
	require.True(t, ok)
	assert.Equal(t, uint64(64), cam.Size)

	mat, ok := sh.StructLayout("MaterialUniform")
	require.True(t, ok)
	assert.Equal(t, uint64(64), mat.Size)
	offsets := map[string]uint64{"ambient": 0, "diffuse": 16, "specular": 32, "shininess": 48}
	for name, off := range offsets {
		f, ok := mat.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, off, f.Offset, name)
	}

	light, ok := sh.StructLayout("LightUniform")
	require.True(t, ok)
	assert.Equal(t, uint64(32), light.Size)
	color, _ := light.Field("color")
	assert.Equal(t, uint64(16), color.Offset)
	assert.Equal(t, uint64(12), color.Size)

	out, ok := sh.StructLayout("VertexOutput")
	require.True(t, ok)
	pos, _ := out.Field("clip_position")
	assert.True(t, pos.Builtin)
}

func TestVertexInputs(t *testing.T) {
	for _, ctor := range []func() (Shader, error){Lit, Unlit} {
		sh, err := ctor()
		require.NoError(t, err)

		inputs := sh.VertexInputs()
		require.Len(t, inputs, 1, sh.Key())
		layout := inputs[0]
		assert.Equal(t, uint64(32), layout.ArrayStride)
		assert.Equal(t, []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: backend.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		}, layout.Attributes)
	}
}

func TestUnlitHasOnlyCameraAndTexture(t *testing.T) {
	sh, err := Unlit()
	require.NoError(t, err)

	decls := sh.Declarations()
	require.Len(t, decls, 3)
	for _, d := range decls {
		assert.LessOrEqual(t, d.Group, uint32(1))
	}
}

func TestNewShaderErrors(t *testing.T) {
	_, err := NewShader("empty", "")
	assert.True(t, errors.Is(err, ErrShader))

	_, err = NewShader("vertex-only", `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`)
	assert.True(t, errors.Is(err, ErrShader))
	assert.Contains(t, err.Error(), "fragment")
}

func TestCommentedDeclarationsAreIgnored(t *testing.T) {
	src := `
// @group(5) @binding(0) var<uniform> ghost: Ghost;
/* @group(6) @binding(0) var<uniform> other: Ghost; /* nested */ */
@group(0) @binding(0) var<storage, read> data: array<f32>;
@group(0) @binding(1) var t_depth: texture_depth_2d;
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(); }
`
	sh, err := NewShader("custom", src)
	require.NoError(t, err)

	decls := sh.Declarations()
	require.Len(t, decls, 2)
	assert.False(t, decls[0].Known)
	assert.False(t, decls[1].Known)
	assert.Empty(t, sh.VertexInputs())
}

func TestStructLayoutOverridesAndNesting(t *testing.T) {
	src := `
struct Inner {
    a: f32,
    @size(12) b: f32,
}
struct Outer {
    head: vec2<f32>,
    inner: Inner,
    tail: array<vec4<f32>, 2>,
}
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(); }
`
	sh, err := NewShader("nested", src)
	require.NoError(t, err)

	inner, ok := sh.StructLayout("Inner")
	require.True(t, ok)
	assert.Equal(t, uint64(16), inner.Size)
	assert.Equal(t, uint64(4), inner.Align)

	outer, ok := sh.StructLayout("Outer")
	require.True(t, ok)
	f, _ := outer.Field("inner")
	assert.Equal(t, uint64(8), f.Offset)
	tail, _ := outer.Field("tail")
	assert.Equal(t, uint64(32), tail.Offset)
	assert.Equal(t, uint64(64), outer.Size)
}
