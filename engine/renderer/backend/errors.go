package backend

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("surface outdated")

	// ErrSurfaceTimeout means no surface texture became available in time.
	ErrSurfaceTimeout = errors.New("surface acquire timeout")

	// ErrOutOfMemory means the device ran out of memory.
	ErrOutOfMemory = errors.New("device out of memory")

	// ErrDeviceLost means the device is gone and cannot be recovered.
	ErrDeviceLost = errors.New("device lost")

	// ErrFrameHeld means a frame was acquired while a previous one was still held.
	ErrFrameHeld = errors.New("previous frame not yet presented")
)

// SurfaceError maps a raw acquire error message onto one of the surface sentinels.
// Native bindings report surface status as text, so the match is on lowercase keywords.
// Unknown messages are wrapped without a sentinel.
//
// Parameters:
//   - err: the raw error from the native surface
//
// Returns:
//   - error: the error wrapped with a sentinel cause, or nil if err is nil
func SurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	squashed := strings.ReplaceAll(strings.ReplaceAll(msg, " ", ""), "_", "")
	switch {
	case strings.Contains(squashed, "outofmemory"):
		return errors.Wrap(ErrOutOfMemory, err.Error())
	case strings.Contains(squashed, "devicelost"):
		return errors.Wrap(ErrDeviceLost, err.Error())
	case strings.Contains(msg, "outdated"):
		return errors.Wrap(ErrSurfaceOutdated, err.Error())
	case strings.Contains(msg, "lost"):
		return errors.Wrap(ErrSurfaceLost, err.Error())
	case strings.Contains(msg, "timeout"):
		return errors.Wrap(ErrSurfaceTimeout, err.Error())
	}
	return errors.Wrap(err, "acquire surface texture")
}
