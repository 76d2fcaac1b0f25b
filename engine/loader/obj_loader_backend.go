package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// defaultMaterial is the name g3n gives faces that follow no usemtl statement.
const defaultMaterial = "internal default"

// objLoaderBackend parses Wavefront OBJ files and their MTL material libraries.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() *objLoaderBackend {
	return &objLoaderBackend{}
}

// vertexKey identifies a unique position/uv/normal combination of a face corner. Corners without
// a normal carry their face index, since each face gets its own flat normal.
type vertexKey struct {
	position, uv, normal int
	face                 int
}

func (b *objLoaderBackend) Load(fsys fs.FS, modelPath string) (*common.ImportedModel, []string, error) {
	objData, err := fs.ReadFile(fsys, modelPath)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrParse, "read %s: %v", modelPath, err)
	}

	var warnings []string
	dir := path.Dir(modelPath)

	mtlData := []byte{}
	if lib := materialLibrary(objData); lib != "" {
		mtlPath := path.Join(dir, lib)
		if mtlData, err = fs.ReadFile(fsys, mtlPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("material library %s: %v", mtlPath, err))
			mtlData = []byte{}
		}
	}

	// g3n opens the mtllib from disk when no reader is given, so an empty reader is always passed.
	dec, err := obj.DecodeReader(bytes.NewReader(objData), bytes.NewReader(mtlData))
	if err != nil {
		return nil, warnings, errors.Wrapf(ErrParse, "decode %s: %v", modelPath, err)
	}
	warnings = append(warnings, dec.Warnings...)

	out := &common.ImportedModel{Path: modelPath}
	materialIndex := make(map[string]int)
	addMaterial := func(name string) int {
		if idx, ok := materialIndex[name]; ok {
			return idx
		}
		m, ok := dec.Materials[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("material %q is not defined", name))
			materialIndex[name] = -1
			return -1
		}
		imported := common.ImportedMaterial{
			Name:      name,
			Ambient:   [3]float32{m.Ambient.R, m.Ambient.G, m.Ambient.B},
			Diffuse:   [3]float32{m.Diffuse.R, m.Diffuse.G, m.Diffuse.B},
			Specular:  [3]float32{m.Specular.R, m.Specular.G, m.Specular.B},
			Shininess: m.Shininess,
		}
		if m.MapKd != "" {
			imported.DiffuseTexturePath = path.Join(dir, m.MapKd)
		}
		materialIndex[name] = len(out.Materials)
		out.Materials = append(out.Materials, imported)
		return materialIndex[name]
	}

	for _, o := range dec.Objects {
		if len(o.Faces) == 0 {
			continue
		}
		mesh, mat, w := buildMesh(dec, o)
		warnings = append(warnings, w...)
		mesh.MaterialIndex = -1
		if mat != "" && mat != defaultMaterial {
			mesh.MaterialIndex = addMaterial(mat)
		}
		out.Meshes = append(out.Meshes, mesh)
	}

	// Materials no face references still belong to the model.
	unused := make([]string, 0)
	for name := range dec.Materials {
		if _, ok := materialIndex[name]; !ok && name != defaultMaterial {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		addMaterial(name)
	}

	return out, warnings, nil
}

// buildMesh triangulates the faces of one object as fans and de-indexes every unique
// position/uv/normal corner into a vertex record. Texture V is flipped to a top-left origin.
// Corners without a normal get the flat normal of their face.
//
// Returns:
//   - common.ImportedMesh: the mesh, without a material index
//   - string: the material of the object's first face
//   - []string: warnings
func buildMesh(dec *obj.Decoder, o obj.Object) (common.ImportedMesh, string, []string) {
	mesh := common.ImportedMesh{Name: o.Name}
	var warnings []string
	unique := make(map[vertexKey]uint32)
	material := o.Faces[0].Material

	for fi, face := range o.Faces {
		if len(face.Vertices) < 3 {
			warnings = append(warnings, fmt.Sprintf("%s face %d has %d vertices", o.Name, fi, len(face.Vertices)))
			continue
		}
		if face.Material != material {
			warnings = append(warnings, fmt.Sprintf("%s face %d uses material %q, mesh uses %q", o.Name, fi, face.Material, material))
		}
		flat := faceNormal(dec, face)
		corner := func(k int) uint32 {
			key := vertexKey{position: face.Vertices[k], uv: -1, normal: -1, face: -1}
			if k < len(face.Uvs) && validIndex(face.Uvs[k], 2, len(dec.Uvs)) {
				key.uv = face.Uvs[k]
			}
			if k < len(face.Normals) && validIndex(face.Normals[k], 3, len(dec.Normals)) {
				key.normal = face.Normals[k]
			} else {
				key.face = fi
			}
			if idx, ok := unique[key]; ok {
				return idx
			}
			v := common.ImportedVertex{
				Position: vec3At(dec.Vertices, key.position),
				Normal:   flat,
			}
			if key.normal >= 0 {
				v.Normal = vec3At(dec.Normals, key.normal)
			}
			if key.uv >= 0 {
				v.UV = [2]float32{dec.Uvs[key.uv*2], 1 - dec.Uvs[key.uv*2+1]}
			}
			idx := uint32(len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, v)
			unique[key] = idx
			return idx
		}
		for i := 2; i < len(face.Vertices); i++ {
			mesh.Indices = append(mesh.Indices, corner(0), corner(i-1), corner(i))
		}
	}
	return mesh, material, warnings
}

// faceNormal returns the normalized normal of a face's first triangle, or +Y for a degenerate face.
func faceNormal(dec *obj.Decoder, face obj.Face) [3]float32 {
	a := mgl32.Vec3(vec3At(dec.Vertices, face.Vertices[0]))
	b := mgl32.Vec3(vec3At(dec.Vertices, face.Vertices[1]))
	c := mgl32.Vec3(vec3At(dec.Vertices, face.Vertices[2]))
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32(n.Normalize())
}

// validIndex reports whether idx addresses a whole element of the given width. g3n marks absent
// uv and normal references with math.MaxUint32.
func validIndex(idx, width, length int) bool {
	return idx >= 0 && idx*width+width-1 < length
}

func vec3At(values []float32, idx int) [3]float32 {
	if idx < 0 || idx*3+2 >= len(values) {
		return [3]float32{}
	}
	return [3]float32{values[idx*3], values[idx*3+1], values[idx*3+2]}
}

// materialLibrary returns the first mtllib name an OBJ file declares.
func materialLibrary(objData []byte) string {
	s := bufio.NewScanner(bytes.NewReader(objData))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if name, ok := strings.CutPrefix(line, "mtllib"); ok && (name == "" || name[0] == ' ' || name[0] == '\t') {
			return strings.TrimSpace(name)
		}
	}
	return ""
}
