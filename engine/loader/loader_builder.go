package loader

import "github.com/Carmen-Shannon/oxy-viewer/common"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets how many textures are decoded in parallel.
//
// Parameters:
//   - n: the worker count, clamped to at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithImageDecoder is an option builder that replaces the content-sniffing image decoder.
//
// Parameters:
//   - d: the image decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithImageDecoder(d ImageDecoder) LoaderBuilderOption {
	return func(l *loader) {
		l.decoder = d
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model *common.ImportedModel) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
