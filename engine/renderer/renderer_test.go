package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/recording"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/texture"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(t *testing.T) *common.ImportedModel {
	t.Helper()
	model, err := loader.NewLoader(assets.FS()).LoadModel(assets.CubeModel)
	require.NoError(t, err)
	return model
}

func triangle(withMaterial bool) *common.ImportedModel {
	n := [3]float32{0, 0, 1}
	model := &common.ImportedModel{
		Path: "triangle.obj",
		Meshes: []common.ImportedMesh{{
			Name: "triangle",
			Vertices: []common.ImportedVertex{
				{Position: [3]float32{-1, -1, 0}, Normal: n},
				{Position: [3]float32{1, -1, 0}, Normal: n, UV: [2]float32{1, 0}},
				{Position: [3]float32{0, 1, 0}, Normal: n, UV: [2]float32{0.5, 1}},
			},
			Indices:       []uint32{0, 1, 2},
			MaterialIndex: -1,
		}},
	}
	if withMaterial {
		model.Materials = []common.ImportedMaterial{{Name: "flat", Diffuse: [3]float32{1, 1, 1}, Shininess: 8}}
		model.Meshes[0].MaterialIndex = 0
	}
	return model
}

func newRenderer(t *testing.T, dev backend.Device, model *common.ImportedModel, options ...RendererBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(dev, 800, 600, model, options...)
	require.NoError(t, err)
	return r
}

func TestRenderBundledCube(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, cube(t))

	assert.Equal(t, StateReady, r.State())
	assert.False(t, r.Reduced())
	assert.Equal(t, backend.TextureFormatBGRA8UnormSrgb, r.Surface().Format)
	assert.Equal(t, backend.PresentModeFifo, r.Surface().PresentMode)
	require.NotNil(t, r.Material())
	assert.Equal(t, "Brick", r.Material().Name())
	assert.Equal(t, float32(32), r.Material().Shininess())
	assert.Equal(t, uint32(64), r.Material().Texture().Width())

	require.NoError(t, r.Update())
	require.NoError(t, r.Render())

	frame := dev.LastFrame()
	require.NotNil(t, frame)
	assert.True(t, frame.Submitted)
	assert.True(t, frame.Presented)
	require.Len(t, frame.Passes, 1)

	pass := frame.Passes[0]
	assert.True(t, pass.Ended)
	assert.Equal(t, DefaultClearColor, pass.Descriptor.ClearColor)
	assert.Equal(t, float32(1), pass.Descriptor.DepthClearValue)
	assert.Equal(t, r.Depth().View(), pass.Descriptor.DepthView)
	assert.Equal(t, dev.Pipelines[0], pass.Pipeline)
	assert.Equal(t, []uint32{0, 1, 2, 3}, pass.BindOrder)
	for g := uint32(0); g < 4; g++ {
		assert.NotNil(t, pass.BindGroups[g], "group %d", g)
	}
	assert.Equal(t, r.Material().TextureBindGroup().BindGroup(), pass.BindGroups[TextureGroup])
	assert.Equal(t, r.Mesh().VertexBuffer(), pass.VertexBuffers[0])
	assert.Equal(t, r.Mesh().IndexBuffer(), pass.IndexBuffer)
	assert.Equal(t, backend.IndexFormatUint32, pass.IndexFormat)
	assert.Equal(t, []recording.Draw{{IndexCount: 36, InstanceCount: 1}}, frame.Draws())
}

func TestOneDrawPerFrame(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(true))

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Update())
		require.NoError(t, r.Render())
	}
	require.Len(t, dev.Frames, 3)
	for _, f := range dev.Frames {
		assert.Len(t, f.Draws(), 1)
		assert.Equal(t, uint32(3), f.Draws()[0].IndexCount)
		assert.True(t, f.Released)
	}
}

func TestReducedConfiguration(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(false))

	assert.True(t, r.Reduced())
	assert.Nil(t, r.Material())

	require.Len(t, dev.Pipelines, 1)
	assert.Len(t, dev.Pipelines[0].Descriptor.BindGroupLayouts, 2)

	var white *recording.Texture
	for _, tex := range dev.Textures {
		if tex.Descriptor.Label == "Fallback Diffuse Texture" {
			white = tex
		}
	}
	require.NotNil(t, white)
	assert.Equal(t, texture.White().Pixels, white.Data)

	require.NoError(t, r.Render())
	pass := dev.LastFrame().Passes[0]
	assert.Equal(t, []uint32{0, 1}, pass.BindOrder)
	assert.Len(t, dev.LastFrame().Draws(), 1)
}

func TestMissingMaterialIndexUsesFirst(t *testing.T) {
	model := triangle(true)
	model.Meshes[0].MaterialIndex = -1

	r := newRenderer(t, recording.NewDevice(), model)
	require.NotNil(t, r.Material())
	assert.Equal(t, "flat", r.Material().Name())
}

func TestResizeRoundTrip(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(true))

	surface := r.Surface()
	vp := r.Camera().Uniform().Marshal()
	require.NoError(t, r.Render())
	cameraBuffer := boundBuffer(t, dev, CameraGroup)
	uploaded := append([]byte(nil), cameraBuffer.Data...)
	assert.Equal(t, vp, uploaded[:len(vp)])

	require.NoError(t, r.Resize(1024, 300))
	require.NoError(t, r.Update())
	assert.NotEqual(t, uploaded, cameraBuffer.Data)
	assert.Equal(t, uint32(1024), r.Depth().Width())

	require.NoError(t, r.Resize(800, 600))
	require.NoError(t, r.Update())

	assert.Equal(t, surface, r.Surface())
	assert.Equal(t, vp, r.Camera().Uniform().Marshal())
	assert.Equal(t, uploaded, cameraBuffer.Data)
	assert.Equal(t, uint64(2), r.Generation())
	assert.Equal(t, uint64(2), r.Depth().Generation())

	live := 0
	for _, tex := range dev.Textures {
		if tex.Descriptor.Format == texture.DepthFormat && !tex.Released {
			live++
		}
	}
	assert.Equal(t, 1, live, "old depth attachments are released")
	require.NoError(t, r.Render())
}

// boundBuffer returns the uniform buffer behind the bind group the last frame set at index.
func boundBuffer(t *testing.T, dev *recording.Device, index uint32) *recording.Buffer {
	t.Helper()
	frame := dev.LastFrame()
	require.NotNil(t, frame)
	require.NotEmpty(t, frame.Passes)
	group, ok := frame.Passes[0].BindGroups[index].(*recording.BindGroup)
	require.True(t, ok)
	require.NotEmpty(t, group.Descriptor.Entries)
	buf, ok := group.Descriptor.Entries[0].Buffer.(*recording.Buffer)
	require.True(t, ok)
	return buf
}

func TestFailedResizeKeepsLastConfiguration(t *testing.T) {
	for _, op := range []string{recording.OpCreateTexture, recording.OpConfigureSurface} {
		t.Run(op, func(t *testing.T) {
			dev := recording.NewDevice()
			r := newRenderer(t, dev, triangle(true))
			surface := r.Surface()
			depth := r.Depth()
			vp := r.Camera().Uniform().Marshal()
			live := len(dev.LiveTextures())

			dev.FailNext(op, backend.ErrSurfaceTimeout)
			err := r.Resize(1024, 768)
			require.Error(t, err)
			assert.Equal(t, TransientFrameError, Classify(err))

			assert.Equal(t, surface, r.Surface())
			assert.Zero(t, r.Generation())
			assert.Same(t, depth, r.Depth())
			assert.Equal(t, vp, r.Camera().Uniform().Marshal())
			assert.Equal(t, StateReady, r.State())
			assert.Len(t, dev.LiveTextures(), live)

			require.NoError(t, r.Update())
			require.NoError(t, r.Render())
			assert.Equal(t, uint32(800), dev.LastFrame().Surface.Width)

			require.NoError(t, r.Resize(1024, 768))
			assert.Equal(t, uint64(1), r.Generation())
			require.NoError(t, r.Render())
		})
	}
}

func TestResizeZeroExtent(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(true))
	textures := len(dev.Textures)
	configs := len(dev.SurfaceConfigs)

	for _, size := range [][2]uint32{{0, 0}, {0, 600}, {800, 0}} {
		err := r.Resize(size[0], size[1])
		assert.True(t, errors.Is(err, ErrZeroExtent))
	}
	assert.Len(t, dev.Textures, textures)
	assert.Len(t, dev.SurfaceConfigs, configs)
	assert.Zero(t, r.Generation())
	assert.Equal(t, StateReady, r.State())
	assert.Equal(t, TransientFrameError, Classify(r.Resize(0, 0)))
}

func TestUpdateUploadsOnlyWhenDirty(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(true))
	writes := dev.Count(recording.OpWriteBuffer)

	require.NoError(t, r.Update())
	assert.Equal(t, writes, dev.Count(recording.OpWriteBuffer))

	require.NoError(t, r.Camera().SetAspect(2))
	require.NoError(t, r.Update())
	assert.Equal(t, writes+1, dev.Count(recording.OpWriteBuffer))
	assert.False(t, r.Camera().Dirty())
}

func TestInputIsNotConsumed(t *testing.T) {
	r := newRenderer(t, recording.NewDevice(), triangle(true))
	assert.False(t, r.Input(common.KeySpace))
}

// resizingDevice resizes the renderer from inside AcquireFrame.
type resizingDevice struct {
	*recording.Device
	r   Renderer
	err error
}

func (d *resizingDevice) AcquireFrame() (backend.Frame, error) {
	if d.r != nil {
		d.err = d.r.Resize(640, 480)
	}
	return d.Device.AcquireFrame()
}

func TestResizeDuringFrame(t *testing.T) {
	dev := &resizingDevice{Device: recording.NewDevice()}
	r := newRenderer(t, dev, triangle(true))
	dev.r = r

	require.NoError(t, r.Render())
	assert.True(t, errors.Is(dev.err, ErrFrameInFlight))
	assert.Equal(t, uint32(800), r.Surface().Width)
	assert.Zero(t, r.Generation())

	dev.r = nil
	require.NoError(t, r.Resize(640, 480))
}

func TestRenderFrameErrors(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, triangle(true))

	dev.FailNext(recording.OpAcquireFrame, backend.ErrSurfaceOutdated)
	err := r.Render()
	assert.Equal(t, RecoverableFrameFailure, Classify(err))

	dev.FailNext(recording.OpAcquireFrame, backend.ErrSurfaceTimeout)
	assert.Equal(t, TransientFrameError, Classify(r.Render()))

	dev.FailNext(recording.OpAcquireFrame, backend.ErrDeviceLost)
	assert.Equal(t, FatalFrameFailure, Classify(r.Render()))

	require.NoError(t, r.Render(), "the renderer keeps working after a skipped frame")
}

func TestStaleAttachment(t *testing.T) {
	r := newRenderer(t, recording.NewDevice(), triangle(true))
	impl := r.(*renderer)
	impl.generation++

	err := r.Render()
	assert.True(t, errors.Is(err, ErrStaleAttachment))
	assert.Equal(t, FatalFrameFailure, Classify(err))
}

func TestDestroy(t *testing.T) {
	dev := recording.NewDevice()
	r := newRenderer(t, dev, cube(t))

	require.NoError(t, r.Destroy())
	assert.Equal(t, StateDestroyed, r.State())
	assert.True(t, dev.Released)
	assert.Empty(t, dev.LiveTextures())
	for _, b := range dev.Buffers {
		assert.True(t, b.Released, b.Descriptor.Label)
	}

	assert.True(t, errors.Is(r.Destroy(), ErrDestroyed))
	assert.True(t, errors.Is(r.Render(), ErrDestroyed))
	assert.True(t, errors.Is(r.Update(), ErrDestroyed))
	assert.True(t, errors.Is(r.Resize(10, 10), ErrDestroyed))
	assert.Equal(t, FatalFrameFailure, Classify(r.Render()))
}

func TestAccessorsDuringDestroy(t *testing.T) {
	r := newRenderer(t, recording.NewDevice(), triangle(true))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = r.Mesh()
			_ = r.Material()
			_ = r.Light()
			_ = r.Camera()
			_ = r.Reduced()
			_ = r.Depth()
		}
	}()
	require.NoError(t, r.Destroy())
	<-done

	assert.Nil(t, r.Mesh())
	assert.Nil(t, r.Material())
	assert.Nil(t, r.Depth())
}

func TestStartupFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *common.ImportedModel
		fail  string
		cause error
	}{
		{"pipeline", triangle(true), recording.OpCreateRenderPipeline, errors.New("validation")},
		{"depth attachment", triangle(true), recording.OpCreateTexture, nil},
		{"surface", triangle(true), recording.OpConfigureSurface, backend.ErrSurfaceLost},
		{"no mesh", &common.ImportedModel{}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := recording.NewDevice()
			if tt.fail != "" {
				if tt.cause == nil {
					// the diffuse texture succeeds, the depth attachment fails
					dev.FailNext(tt.fail, nil)
					tt.cause = backend.ErrOutOfMemory
				}
				dev.FailNext(tt.fail, tt.cause)
			}

			r, err := NewRenderer(dev, 800, 600, tt.model)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrStartup))
			assert.Equal(t, StartupFailure, Classify(err))
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause))
			}

			assert.True(t, dev.Released)
			assert.Empty(t, dev.LiveTextures())
			for _, b := range dev.Buffers {
				assert.True(t, b.Released, b.Descriptor.Label)
			}
		})
	}

	_, err := NewRenderer(recording.NewDevice(), 0, 600, triangle(true))
	assert.True(t, errors.Is(err, ErrZeroExtent))
}

func TestSurfaceSelection(t *testing.T) {
	dev := recording.NewDevice(recording.WithCapabilities(backend.SurfaceCapabilities{
		Formats:      []backend.TextureFormat{backend.TextureFormatRGBA8Unorm, backend.TextureFormatBGRA8Unorm},
		PresentModes: []backend.PresentMode{backend.PresentModeFifo},
	}))
	r := newRenderer(t, dev, triangle(true), WithPresentMode(backend.PresentModeMailbox))
	assert.Equal(t, backend.TextureFormatRGBA8Unorm, r.Surface().Format)
	assert.Equal(t, backend.PresentModeFifo, r.Surface().PresentMode)

	dev = recording.NewDevice()
	r = newRenderer(t, dev, triangle(true), WithPresentMode(backend.PresentModeImmediate))
	assert.Equal(t, backend.PresentModeImmediate, r.Surface().PresentMode)

	_, err := NewRenderer(recording.NewDevice(recording.WithCapabilities(backend.SurfaceCapabilities{})), 800, 600, triangle(true))
	assert.Equal(t, StartupFailure, Classify(err))
}

func TestOptions(t *testing.T) {
	dev := recording.NewDevice()
	red := backend.Color{R: 1, A: 1}
	r := newRenderer(t, dev, triangle(true),
		WithClearColor(red),
		WithCameraOptions(camera.WithEye(0, 0, 5), camera.WithAspect(9)),
	)
	assert.Equal(t, float32(5), r.Camera().Eye().Z())
	assert.InDelta(t, 800.0/600.0, r.Camera().Aspect(), 1e-6, "aspect follows the surface")

	require.NoError(t, r.Render())
	assert.Equal(t, red, dev.LastFrame().Passes[0].Descriptor.ClearColor)
}
