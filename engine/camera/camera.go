// Package camera holds the viewer's fixed viewpoint and produces its view-projection transform.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidProjection is the cause of every rejected camera parameter.
var ErrInvalidProjection = errors.New("invalid camera projection")

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	center mgl32.Vec3
	up     mgl32.Vec3

	fovy   float32
	aspect float32
	near   float32
	far    float32

	dirty bool
}

// Camera defines the interface for the viewer camera.
// The camera is a right-handed perspective camera whose only mutable parameter is its aspect
// ratio, which follows the surface size.
type Camera interface {
	// Eye returns the camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Center returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Center() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fovy returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: vertical field of view in radians
	Fovy() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetAspect sets the aspect ratio and marks the camera dirty.
	//
	// Parameters:
	//   - aspect: the aspect ratio, positive and finite
	//
	// Returns:
	//   - error: an ErrInvalidProjection-caused error if aspect is not positive and finite
	SetAspect(aspect float32) error

	// ViewMatrix returns the right-handed look-at matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective matrix with depth mapped to [0, 1].
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjection returns projection x view. It is a pure function of the camera state.
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix (column-major)
	ViewProjection() mgl32.Mat4

	// Uniform returns the camera state as its GPU uniform.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform holding ViewProjection()
	Uniform() GPUCameraUniform

	// Dirty reports whether the camera changed since the last ClearDirty.
	//
	// Returns:
	//   - bool: true if the uniform needs re-uploading
	Dirty() bool

	// ClearDirty marks the current state as uploaded.
	ClearDirty()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a validated Camera. The defaults look at the origin from (0, 1, 2) with a
// 0.7 radian vertical field of view, aspect 1, near 0.1 and far 100. A new camera starts dirty so
// its first Update uploads the uniform.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: an ErrInvalidProjection-caused error if the resulting parameters are invalid
func NewCamera(options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 1, 2},
		center: mgl32.Vec3{0, 0, 0},
		up:     mgl32.Vec3{0, 1, 0},
		fovy:   0.7,
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		dirty:  true,
	}
	for _, option := range options {
		option(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Center() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fovy() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovy
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetAspect(aspect float32) error {
	if err := validateAspect(aspect); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.dirty = true
	return nil
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.eye, c.center, c.up)
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection().Mul4(mgl32.LookAtV(c.eye, c.center, c.up))
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	return GPUCameraUniform{ViewProj: c.ViewProjection()}
}

func (c *cameraImpl) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *cameraImpl) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

// projection builds the WebGPU-range perspective matrix. Caller must hold the mutex.
func (c *cameraImpl) projection() mgl32.Mat4 {
	return common.OpenGLToWebGPU.Mul4(mgl32.Perspective(c.fovy, c.aspect, c.near, c.far))
}

// validate checks every camera parameter. Caller must hold the mutex or own the camera exclusively.
func (c *cameraImpl) validate() error {
	for _, v := range [][]float32{c.eye[:], c.center[:], c.up[:], {c.fovy, c.near, c.far}} {
		for _, f := range v {
			if !finite(f) {
				return errors.Wrapf(ErrInvalidProjection, "non-finite parameter %v", f)
			}
		}
	}
	if err := validateAspect(c.aspect); err != nil {
		return err
	}
	if c.fovy <= 0 || c.fovy >= math32.Pi {
		return errors.Wrapf(ErrInvalidProjection, "fovy %v outside (0, pi)", c.fovy)
	}
	if c.near <= 0 || c.near >= c.far {
		return errors.Wrapf(ErrInvalidProjection, "near %v and far %v must satisfy 0 < near < far", c.near, c.far)
	}
	forward := c.center.Sub(c.eye)
	if forward.Len() == 0 {
		return errors.Wrap(ErrInvalidProjection, "eye and center coincide")
	}
	if forward.Cross(c.up).Len() == 0 {
		return errors.Wrap(ErrInvalidProjection, "up is parallel to the view direction")
	}
	return nil
}

func validateAspect(aspect float32) error {
	if !finite(aspect) || aspect <= 0 {
		return errors.Wrapf(ErrInvalidProjection, "aspect %v must be positive and finite", aspect)
	}
	return nil
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
