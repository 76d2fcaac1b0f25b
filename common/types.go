// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// BytesPerRow returns the row pitch of the tightly packed RGBA8 pixel buffer.
func (t TextureStagingData) BytesPerRow() uint32 {
	return t.Width * 4
}

// ImportedVertex is a single decoded vertex as produced by the loader.
type ImportedVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// ImportedMesh is the raw geometry of one mesh as produced by the loader.
type ImportedMesh struct {
	// Name is the object name from the source file.
	Name string

	// Vertices holds the de-indexed vertex records.
	Vertices []ImportedVertex

	// Indices holds triangle-list indices into Vertices.
	Indices []uint32

	// MaterialIndex is the index into ImportedModel.Materials, or -1 when the mesh has no material.
	MaterialIndex int
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// Ambient is the ambient reflectivity (Ka).
	Ambient [3]float32

	// Diffuse is the diffuse reflectivity (Kd).
	Diffuse [3]float32

	// Specular is the specular reflectivity (Ks).
	Specular [3]float32

	// Shininess is the specular exponent (Ns).
	Shininess float32

	// DiffuseTexturePath is the diffuse texture path, relative to the model's directory.
	DiffuseTexturePath string

	// DiffuseTexture holds the decoded diffuse image. Nil until the loader decodes it.
	DiffuseTexture *TextureStagingData
}

// ImportedModel is everything the loader extracted from one model file.
type ImportedModel struct {
	// Path is the model path the data was loaded from.
	Path string

	Meshes    []ImportedMesh
	Materials []ImportedMaterial
}
