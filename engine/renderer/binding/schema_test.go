package binding

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCameraLayout = MustUniformLayout("CameraUniform", Field{Name: "view_proj", Type: FieldMat4})
	testLightLayout  = MustUniformLayout("LightUniform",
		Field{Name: "position", Type: FieldVec3, Offset: 0},
		Field{Name: "color", Type: FieldVec3, Offset: 16},
	)
	testMaterialLayout = materialLayout()
)

func uniformSlot(group uint32, name string, vis backend.ShaderStage, l *UniformLayout) Slot {
	return Slot{Group: group, Name: name, Entries: []Entry{
		{Binding: 0, Name: name, Kind: backend.BindingKindUniform, Visibility: vis, Layout: l},
	}}
}

func textureSlot(group uint32) Slot {
	return Slot{Group: group, Name: "diffuse", Entries: []Entry{
		{Binding: 0, Name: "t_diffuse", Kind: backend.BindingKindTexture, Visibility: backend.ShaderStageFragment},
		{Binding: 1, Name: "s_diffuse", Kind: backend.BindingKindSampler, Visibility: backend.ShaderStageFragment},
	}}
}

func litSchema(t *testing.T) Schema {
	t.Helper()
	s, err := NewSchema(
		uniformSlot(0, "camera", backend.ShaderStageVertex, &testCameraLayout),
		textureSlot(1),
		uniformSlot(2, "material", backend.ShaderStageFragment, &testMaterialLayout),
		uniformSlot(3, "light", backend.ShaderStageVertex|backend.ShaderStageFragment, &testLightLayout),
	)
	require.NoError(t, err)
	return s
}

func TestSchemaValidate(t *testing.T) {
	s := litSchema(t)
	assert.Equal(t, 4, s.Len())

	_, err := NewSchema()
	assert.True(t, errors.Is(err, ErrContract))

	_, err = NewSchema(textureSlot(1))
	assert.True(t, errors.Is(err, ErrContract), "groups must start at 0")

	dup := textureSlot(0)
	dup.Entries[1].Binding = 0
	_, err = NewSchema(dup)
	assert.True(t, errors.Is(err, ErrContract))

	invisible := uniformSlot(0, "camera", 0, &testCameraLayout)
	_, err = NewSchema(invisible)
	assert.True(t, errors.Is(err, ErrContract))

	noLayout := uniformSlot(0, "camera", backend.ShaderStageVertex, nil)
	_, err = NewSchema(noLayout)
	assert.True(t, errors.Is(err, ErrContract))

	texWithLayout := textureSlot(0)
	texWithLayout.Entries[0].Layout = &testCameraLayout
	_, err = NewSchema(texWithLayout)
	assert.True(t, errors.Is(err, ErrContract))

	badLayout := UniformLayout{Name: "Bad", Fields: []Field{{Name: "a", Type: FieldVec3, Offset: 4}}}
	_, err = NewSchema(uniformSlot(0, "bad", backend.ShaderStageVertex, &badLayout))
	assert.True(t, errors.Is(err, ErrLayout))
}

func TestSlotLayoutDescriptor(t *testing.T) {
	s := litSchema(t)

	mat, ok := s.Slot(2)
	require.True(t, ok)
	desc := mat.LayoutDescriptor()
	assert.Equal(t, "material Layout (group 2)", desc.Label)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint64(64), desc.Entries[0].MinBindingSize)
	assert.Equal(t, backend.BindingKindUniform, desc.Entries[0].Kind)

	tex, _ := s.Slot(1)
	desc = tex.LayoutDescriptor()
	require.Len(t, desc.Entries, 2)
	assert.Zero(t, desc.Entries[0].MinBindingSize)
	assert.Equal(t, backend.BindingKindSampler, desc.Entries[1].Kind)

	_, ok = s.Slot(4)
	assert.False(t, ok)
}

func TestCheckShaderLit(t *testing.T) {
	sh, err := shader.Lit()
	require.NoError(t, err)
	assert.NoError(t, litSchema(t).CheckShader(sh))
}

func TestCheckShaderUnlit(t *testing.T) {
	sh, err := shader.Unlit()
	require.NoError(t, err)

	reduced, err := NewSchema(
		uniformSlot(0, "camera", backend.ShaderStageVertex, &testCameraLayout),
		textureSlot(1),
	)
	require.NoError(t, err)
	assert.NoError(t, reduced.CheckShader(sh))

	// The lit schema provides groups the unlit program never declares.
	assert.True(t, errors.Is(litSchema(t).CheckShader(sh), ErrContract))
}

func TestCheckShaderMismatches(t *testing.T) {
	sh, err := shader.Lit()
	require.NoError(t, err)

	t.Run("material offset", func(t *testing.T) {
		packed := MustUniformLayout("MaterialUniform",
			Field{Name: "ambient", Type: FieldVec3, Offset: 0},
			Field{Name: "diffuse", Type: FieldVec3, Offset: 16},
			Field{Name: "specular", Type: FieldVec3, Offset: 32},
			Field{Name: "shininess", Type: FieldF32, Offset: 44},
		)
		s := litSchema(t)
		s.Slots[2] = uniformSlot(2, "material", backend.ShaderStageFragment, &packed)
		err := s.CheckShader(sh)
		assert.True(t, errors.Is(err, ErrContract))
		assert.Contains(t, err.Error(), "shininess")
	})

	t.Run("light type", func(t *testing.T) {
		wide := MustUniformLayout("LightUniform",
			Field{Name: "position", Type: FieldVec4, Offset: 0},
			Field{Name: "color", Type: FieldVec3, Offset: 16},
		)
		s := litSchema(t)
		s.Slots[3] = uniformSlot(3, "light", backend.ShaderStageFragment, &wide)
		assert.True(t, errors.Is(s.CheckShader(sh), ErrContract))
	})

	t.Run("missing schema group", func(t *testing.T) {
		s := litSchema(t)
		s.Slots = s.Slots[:3]
		err := s.CheckShader(sh)
		assert.True(t, errors.Is(err, ErrContract))
		assert.Contains(t, err.Error(), "light")
	})

	t.Run("kind swap", func(t *testing.T) {
		s := litSchema(t)
		tex := textureSlot(1)
		tex.Entries[0].Kind, tex.Entries[1].Kind = backend.BindingKindSampler, backend.BindingKindTexture
		s.Slots[1] = tex
		assert.True(t, errors.Is(s.CheckShader(sh), ErrContract))
	})

	t.Run("extra field", func(t *testing.T) {
		extra := MustUniformLayout("CameraUniform",
			Field{Name: "view_proj", Type: FieldMat4, Offset: 0},
			Field{Name: "eye", Type: FieldVec3, Offset: 64},
		)
		s := litSchema(t)
		s.Slots[0] = uniformSlot(0, "camera", backend.ShaderStageVertex, &extra)
		assert.True(t, errors.Is(s.CheckShader(sh), ErrContract))
	})
}

func TestCheckVertexInput(t *testing.T) {
	sh, err := shader.Lit()
	require.NoError(t, err)

	layout := backend.VertexBufferLayout{
		ArrayStride: 32,
		Attributes: []backend.VertexAttribute{
			{Format: backend.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: backend.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: backend.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
	assert.NoError(t, CheckVertexInput(sh, layout))

	short := layout
	short.ArrayStride = 24
	assert.True(t, errors.Is(CheckVertexInput(sh, short), ErrContract))

	swapped := backend.VertexBufferLayout{ArrayStride: 32, Attributes: []backend.VertexAttribute{
		{Format: backend.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: backend.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 2},
		{Format: backend.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 1},
	}}
	assert.True(t, errors.Is(CheckVertexInput(sh, swapped), ErrContract))
}
