package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/recording"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litSchema(t *testing.T) binding.Schema {
	t.Helper()
	s, err := binding.NewSchema(camera.Slot(0), texture.Slot(1), material.Slot(2), light.Slot(3))
	require.NoError(t, err)
	return s
}

func TestNewPipeline(t *testing.T) {
	dev := recording.NewDevice()
	sh, err := shader.Lit()
	require.NoError(t, err)

	p, err := NewPipeline(dev, sh, litSchema(t), mesh.VertexLayout, backend.TextureFormatBGRA8UnormSrgb, texture.DepthFormat)
	require.NoError(t, err)
	assert.Equal(t, shader.LitKey, p.PipelineKey())

	require.Len(t, dev.Shaders, 1)
	require.Len(t, dev.BindGroupLayouts, 4)
	assert.Equal(t, "camera Layout (group 0)", dev.BindGroupLayouts[0].Descriptor.Label)
	assert.Equal(t, uint64(64), dev.BindGroupLayouts[2].Descriptor.Entries[0].MinBindingSize)
	assert.Same(t, dev.BindGroupLayouts[3], p.Layout(3))
	assert.Nil(t, p.Layout(4))

	require.Len(t, dev.Pipelines, 1)
	desc := dev.Pipelines[0].Descriptor
	assert.Equal(t, backend.PrimitiveTopologyTriangleList, desc.Topology)
	assert.Equal(t, backend.CullModeBack, desc.CullMode)
	assert.Equal(t, backend.FrontFaceCCW, desc.FrontFace)
	assert.Equal(t, backend.TextureFormatDepth32Float, desc.DepthFormat)
	assert.Equal(t, backend.CompareFunctionLess, desc.DepthCompare)
	assert.True(t, desc.DepthWriteEnabled)
	assert.Equal(t, backend.TextureFormatBGRA8UnormSrgb, desc.ColorFormat)
	assert.Equal(t, "vs_main", desc.VertexEntryPoint)
	assert.Equal(t, "fs_main", desc.FragmentEntryPoint)
	assert.Len(t, desc.BindGroupLayouts, 4)

	p.Release()
	assert.True(t, dev.Pipelines[0].Released)
	assert.True(t, dev.Shaders[0].Released)
	for _, l := range dev.BindGroupLayouts {
		assert.True(t, l.Released)
	}
}

func TestPipelineOptions(t *testing.T) {
	dev := recording.NewDevice()
	sh, err := shader.Lit()
	require.NoError(t, err)

	p, err := NewPipeline(dev, sh, litSchema(t), mesh.VertexLayout, backend.TextureFormatBGRA8Unorm, texture.DepthFormat,
		WithCullMode(backend.CullModeNone),
		WithFrontFace(backend.FrontFaceCW),
		WithDepthWriteEnabled(false),
		WithDepthCompare(backend.CompareFunctionLessEqual),
	)
	require.NoError(t, err)
	assert.Equal(t, backend.CullModeNone, p.CullMode())
	assert.Equal(t, backend.FrontFaceCW, p.FrontFace())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, backend.CompareFunctionLessEqual, dev.Pipelines[0].Descriptor.DepthCompare)
}

func TestPipelineContractViolation(t *testing.T) {
	dev := recording.NewDevice()
	sh, err := shader.Unlit()
	require.NoError(t, err)

	_, err = NewPipeline(dev, sh, litSchema(t), mesh.VertexLayout, backend.TextureFormatBGRA8UnormSrgb, texture.DepthFormat)
	assert.True(t, errors.Is(err, binding.ErrContract))
	assert.Zero(t, dev.Count(recording.OpCreateShaderModule), "nothing is compiled before the contract holds")

	lit, err := shader.Lit()
	require.NoError(t, err)
	short := backend.VertexBufferLayout{ArrayStride: 24, Attributes: mesh.VertexLayout.Attributes[:2]}
	_, err = NewPipeline(dev, lit, litSchema(t), short, backend.TextureFormatBGRA8UnormSrgb, texture.DepthFormat)
	assert.True(t, errors.Is(err, binding.ErrContract))
}

func TestPipelineFailureReleases(t *testing.T) {
	dev := recording.NewDevice()
	dev.FailNext(recording.OpCreateRenderPipeline, errors.New("validation"))
	sh, err := shader.Lit()
	require.NoError(t, err)

	_, err = NewPipeline(dev, sh, litSchema(t), mesh.VertexLayout, backend.TextureFormatBGRA8UnormSrgb, texture.DepthFormat)
	require.Error(t, err)
	assert.True(t, dev.Shaders[0].Released)
	for _, l := range dev.BindGroupLayouts {
		assert.True(t, l.Released)
	}
}
