// Package loader reads a model and its materials from a file system and decodes the diffuse
// textures they reference. It never touches the GPU.
package loader

import (
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedFormat is returned for a model file extension no backend handles.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrParse is the cause of every model read or parse failure.
	ErrParse = errors.New("model parse failed")

	// ErrImageFormat is the cause of every undetectable or unsupported image.
	ErrImageFormat = errors.New("unsupported image format")
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ/MTL loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	fsys    fs.FS
	decoder ImageDecoder
	workers int

	modelCache map[string]*common.ImportedModel

	backends map[string]loaderBackend
}

// Loader defines the public-facing interface for loading and caching models.
// It abstracts the file format behind a backend selected by file extension and
// manages a cache of previously loaded models.
type Loader interface {
	// LoadModel imports a model file, decodes every diffuse texture its materials reference,
	// and caches the result. If the model is already cached (by path), the cached version is returned.
	// Texture paths are resolved relative to the model's directory.
	//
	// Parameters:
	//   - path: the slash-separated model path within the loader's file system
	//
	// Returns:
	//   - *common.ImportedModel: the loaded model with DiffuseTexture set on every textured material
	//   - error: an ErrUnsupportedFormat, ErrParse or ErrImageFormat-caused error, or an image decode error
	LoadModel(path string) (*common.ImportedModel, error)

	// Get retrieves a cached model by path. Returns nil if not found.
	//
	// Parameters:
	//   - path: the cache key to look up
	//
	// Returns:
	//   - *common.ImportedModel: the cached model or nil
	Get(path string) *common.ImportedModel

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]*common.ImportedModel: all cached models keyed by path
	Models() map[string]*common.ImportedModel
}

var _ Loader = &loader{}

// NewLoader creates a new Loader reading from fsys.
//
// Parameters:
//   - fsys: the asset file system
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(fsys fs.FS, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		fsys:       fsys,
		decoder:    NewImageDecoder(),
		workers:    4,
		modelCache: make(map[string]*common.ImportedModel),
		backends: map[string]loaderBackend{
			".obj": newOBJLoaderBackend(),
		},
	}
	for _, option := range options {
		option(l)
	}
	if l.workers < 1 {
		l.workers = 1
	}
	return l
}

func (l *loader) LoadModel(modelPath string) (*common.ImportedModel, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[modelPath]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(modelPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	imported, warnings, err := backend.Load(l.fsys, modelPath)
	for _, w := range warnings {
		common.Logger().Warn("model warning", "path", modelPath, "warning", w)
	}
	if err != nil {
		return nil, err
	}

	if err := l.decodeTextures(imported); err != nil {
		return nil, errors.Wrapf(err, "load %s", modelPath)
	}

	common.Logger().Info("model loaded",
		"path", modelPath,
		"meshes", len(imported.Meshes),
		"materials", len(imported.Materials),
		"elapsed", time.Since(start),
	)

	l.mu.Lock()
	l.modelCache[modelPath] = imported
	l.mu.Unlock()

	return imported, nil
}

func (l *loader) Get(modelPath string) *common.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[modelPath]
}

func (l *loader) Models() map[string]*common.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*common.ImportedModel, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(modelPath string) (loaderBackend, error) {
	ext := strings.ToLower(path.Ext(modelPath))
	backend, ok := l.backends[ext]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	return backend, nil
}

// decodeTextures reads and decodes every distinct diffuse texture path on a worker pool, then
// attaches the results to the materials. The first error in material order wins.
//
// Parameters:
//   - imported: the parsed model whose materials are updated in place
//
// Returns:
//   - error: the first read or decode failure
func (l *loader) decodeTextures(imported *common.ImportedModel) error {
	paths := make([]string, 0, len(imported.Materials))
	seen := make(map[string]bool)
	for _, m := range imported.Materials {
		if m.DiffuseTexturePath != "" && !seen[m.DiffuseTexturePath] {
			seen[m.DiffuseTexturePath] = true
			paths = append(paths, m.DiffuseTexturePath)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	type result struct {
		data common.TextureStagingData
		err  error
	}
	results := make([]result, len(paths))

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(paths)), 256, 1*time.Second)
	var wg sync.WaitGroup
	wg.Add(len(paths))
	for i, p := range paths {
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				raw, err := fs.ReadFile(l.fsys, p)
				if err != nil {
					results[i].err = errors.Wrapf(err, "read texture %s", p)
					return nil, results[i].err
				}
				data, err := l.decoder.Decode(raw)
				if err != nil {
					results[i].err = errors.Wrapf(err, "texture %s", p)
					return nil, results[i].err
				}
				results[i].data = data
				return nil, nil
			},
		})
	}
	wg.Wait()

	byPath := make(map[string]*common.TextureStagingData, len(paths))
	for i, p := range paths {
		if results[i].err != nil {
			return results[i].err
		}
		byPath[p] = &results[i].data
	}
	for i := range imported.Materials {
		if p := imported.Materials[i].DiffuseTexturePath; p != "" {
			imported.Materials[i].DiffuseTexture = byPath[p]
		}
	}
	return nil
}
