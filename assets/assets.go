// Package assets embeds the bundled model: a textured unit cube with one material.
package assets

import (
	"embed"
	"io/fs"
)

// CubeModel is the path of the bundled cube within FS.
const CubeModel = "cube.obj"

//go:embed data
var data embed.FS

// FS returns the bundled asset file system rooted at the data directory.
func FS() fs.FS {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		panic(err)
	}
	return sub
}
