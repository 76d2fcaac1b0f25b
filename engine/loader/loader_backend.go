package loader

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// loaderBackend defines the generic interface for parsing a model file format.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
// Backends fill DiffuseTexturePath but never decode images; the loader does that.
type loaderBackend interface {
	// Load parses the model at path and every companion file it references.
	//
	// Parameters:
	//   - fsys: the file system the model and its companions are read from
	//   - path: the slash-separated model path within fsys
	//
	// Returns:
	//   - *common.ImportedModel: the parsed meshes and materials
	//   - []string: non-fatal warnings
	//   - error: error if parsing fails
	Load(fsys fs.FS, path string) (*common.ImportedModel, []string, error)
}
