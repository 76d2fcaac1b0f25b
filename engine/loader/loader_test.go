package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadBundledCube(t *testing.T) {
	l := NewLoader(assets.FS())
	m, err := l.LoadModel(assets.CubeModel)
	require.NoError(t, err)

	require.Len(t, m.Meshes, 1)
	mesh := m.Meshes[0]
	assert.Equal(t, "Cube", mesh.Name)
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)
	assert.Equal(t, 0, mesh.MaterialIndex)

	require.Len(t, m.Materials, 1)
	mat := m.Materials[0]
	assert.Equal(t, "Brick", mat.Name)
	assert.Equal(t, float32(32), mat.Shininess)
	assert.Equal(t, [3]float32{0.8, 0.8, 0.8}, mat.Diffuse)
	assert.Equal(t, "cube-diffuse.png", mat.DiffuseTexturePath)
	require.NotNil(t, mat.DiffuseTexture)
	assert.Equal(t, uint32(64), mat.DiffuseTexture.Width)
	assert.Len(t, mat.DiffuseTexture.Pixels, 64*64*4)

	assert.Same(t, m, l.Get(assets.CubeModel))
	again, err := l.LoadModel(assets.CubeModel)
	require.NoError(t, err)
	assert.Same(t, m, again)
}

const triangleOBJ = `mtllib tri.mtl
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 0.25
usemtl Red
f 1/1 2/2 3/3
`

func TestLoadFlipsVAndFillsFlatNormals(t *testing.T) {
	fsys := fstest.MapFS{
		"models/tri.obj": {Data: []byte(triangleOBJ)},
		"models/tri.mtl": {Data: []byte("newmtl Red\nKd 1 0 0\nmap_Kd tex/red.png\n")},
		"models/tex/red.png": {Data: encodePNG(t, 2, 2, color.NRGBA{R: 255, A: 255})},
	}
	m, err := NewLoader(fsys, WithWorkers(2)).LoadModel("models/tri.obj")
	require.NoError(t, err)

	require.Len(t, m.Meshes, 1)
	v := m.Meshes[0].Vertices
	require.Len(t, v, 3)
	assert.Equal(t, [2]float32{0, 1}, v[0].UV)
	assert.Equal(t, [2]float32{0, 0.75}, v[2].UV)
	assert.Equal(t, [3]float32{0, 0, 1}, v[1].Normal)

	require.Len(t, m.Materials, 1)
	assert.Equal(t, "models/tex/red.png", m.Materials[0].DiffuseTexturePath)
	require.NotNil(t, m.Materials[0].DiffuseTexture)
	assert.Equal(t, []byte{255, 0, 0, 255}, m.Materials[0].DiffuseTexture.Pixels[:4])
}

func TestFacesWithoutNormalsKeepTheirOwnFlatNormal(t *testing.T) {
	fsys := fstest.MapFS{
		"fold.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0 0 1\nf 1 2 3\nf 1 4 2\n")},
	}
	m, err := NewLoader(fsys).LoadModel("fold.obj")
	require.NoError(t, err)

	require.Len(t, m.Meshes, 1)
	v := m.Meshes[0].Vertices
	require.Len(t, v, 6)
	for i := 0; i < 3; i++ {
		assert.Equal(t, [3]float32{0, 0, 1}, v[i].Normal)
		assert.Equal(t, [3]float32{0, 1, 0}, v[i+3].Normal)
		assert.Equal(t, [2]float32{}, v[i].UV)
	}
	assert.Equal(t, v[0].Position, v[3].Position)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, m.Meshes[0].Indices)
}

func TestSharedCornersWithNormalsAreReused(t *testing.T) {
	fsys := fstest.MapFS{
		"quad.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\nf 1//1 3//1 4//1\n")},
	}
	m, err := NewLoader(fsys).LoadModel("quad.obj")
	require.NoError(t, err)

	require.Len(t, m.Meshes, 1)
	assert.Len(t, m.Meshes[0].Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Meshes[0].Indices)
}

func TestLoadWithoutMaterials(t *testing.T) {
	fsys := fstest.MapFS{
		"quad.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n")},
	}
	m, err := NewLoader(fsys).LoadModel("quad.obj")
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)
	assert.Len(t, m.Meshes[0].Indices, 6)
	assert.Equal(t, -1, m.Meshes[0].MaterialIndex)
	assert.Empty(t, m.Materials)
}

func TestLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"model.gltf":  {Data: []byte("{}")},
		"broken.obj":  {Data: []byte(triangleOBJ)},
		"garbage.obj": {Data: []byte("mtllib garbage.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl G\nf 1 2 3\n")},
		"garbage.mtl": {Data: []byte("newmtl G\nmap_Kd noise.png\n")},
		"noise.png":   {Data: []byte("definitely not an image")},
	}
	l := NewLoader(fsys)

	_, err := l.LoadModel("model.gltf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = l.LoadModel("absent.obj")
	assert.True(t, errors.Is(err, ErrParse))

	// tri.mtl is referenced but absent; the mesh still loads
	m, err := l.LoadModel("broken.obj")
	require.NoError(t, err)
	assert.Len(t, m.Meshes, 1)

	_, err = l.LoadModel("garbage.obj")
	assert.True(t, errors.Is(err, ErrImageFormat))
	assert.Nil(t, l.Get("garbage.obj"))
}

type stubDecoder struct {
	calls int
}

func (s *stubDecoder) Decode([]byte) (common.TextureStagingData, error) {
	s.calls++
	return common.TextureStagingData{Pixels: []byte{1, 2, 3, 4}, Width: 1, Height: 1}, nil
}

func TestSharedTextureDecodedOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"two.obj": {Data: []byte("mtllib two.mtl\no A\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl A\nf 1 2 3\no B\nusemtl B\nf 1 3 2\n")},
		"two.mtl": {Data: []byte("newmtl A\nmap_Kd shared.png\nnewmtl B\nmap_Kd shared.png\n")},
		"shared.png": {Data: []byte("x")},
	}
	dec := &stubDecoder{}
	m, err := NewLoader(fsys, WithWorkers(1), WithImageDecoder(dec)).LoadModel("two.obj")
	require.NoError(t, err)

	assert.Equal(t, 1, dec.calls)
	require.Len(t, m.Meshes, 2)
	require.Len(t, m.Materials, 2)
	assert.Same(t, m.Materials[0].DiffuseTexture, m.Materials[1].DiffuseTexture)
}

func TestImageDecoder(t *testing.T) {
	d := NewImageDecoder()

	data, err := d.Decode(encodePNG(t, 3, 2, color.NRGBA{G: 128, A: 64}))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Len(t, data.Pixels, 3*2*4)
	assert.Equal(t, []byte{0, 128, 0, 64}, data.Pixels[:4], "alpha stays straight")

	_, err = d.Decode(nil)
	assert.True(t, errors.Is(err, ErrImageFormat))
	_, err = d.Decode([]byte("%PDF-1.4 not an image"))
	assert.True(t, errors.Is(err, ErrImageFormat))
}
