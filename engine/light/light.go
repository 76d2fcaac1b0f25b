// Package light holds the viewer's single fixed point light.
package light

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position [3]float32
	color    [3]float32
}

// Light defines the interface for the scene's point light.
//
// The light is created once, uploaded once and never mutated, so the interface exposes only
// accessors and its uniform form.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Uniform returns the light as its GPU uniform.
	//
	// Returns:
	//   - GPULightUniform: the uniform value
	Uniform() GPULightUniform
}

var _ Light = &lightImpl{}

// NewLight creates a point light. The default sits at (0, 2, -3) and is white.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		position: [3]float32{0, 2, -3},
		color:    [3]float32{1, 1, 1},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Uniform() GPULightUniform {
	return GPULightUniform{Position: l.position, Color: l.color}
}
