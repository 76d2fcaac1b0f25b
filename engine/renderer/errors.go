package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/pkg/errors"
)

var (
	// ErrStartup marks every failure during NewRenderer. The underlying cause stays reachable
	// through errors.Is and errors.Cause.
	ErrStartup = errors.New("renderer startup failed")

	// ErrZeroExtent is returned by Resize for a zero width or height.
	ErrZeroExtent = errors.New("surface extent must be non-zero")

	// ErrFrameInFlight is returned when the surface is reconfigured or the renderer destroyed
	// while a frame is being recorded.
	ErrFrameInFlight = errors.New("frame in flight")

	// ErrStaleAttachment means the depth attachment was built for an older surface generation.
	ErrStaleAttachment = errors.New("depth attachment is stale")

	// ErrDestroyed is returned by every operation on a destroyed renderer.
	ErrDestroyed = errors.New("renderer destroyed")
)

// startupError tags a construction failure with ErrStartup without hiding its cause.
type startupError struct {
	cause error
}

func (e *startupError) Error() string        { return ErrStartup.Error() + ": " + e.cause.Error() }
func (e *startupError) Unwrap() error        { return e.cause }
func (e *startupError) Cause() error         { return e.cause }
func (e *startupError) Is(target error) bool { return target == ErrStartup }

func startupFailure(err error, msg string) error {
	return &startupError{cause: errors.Wrap(err, msg)}
}

// WrapStartup marks a failure outside NewRenderer, such as asset loading or device creation, as
// a startup failure. The cause stays reachable through errors.Is and errors.Cause.
//
// Parameters:
//   - err: the cause
//   - msg: context for the cause
//
// Returns:
//   - error: an error matching ErrStartup, or nil for a nil err
func WrapStartup(err error, msg string) error {
	if err == nil {
		return nil
	}
	return startupFailure(err, msg)
}

// FailureKind is how the engine loop reacts to an error.
type FailureKind int

const (
	// FailureNone is the kind of a nil error.
	FailureNone FailureKind = iota

	// StartupFailure is fatal before the loop starts.
	StartupFailure

	// RecoverableFrameFailure asks for a resize to the current size; the frame is skipped.
	RecoverableFrameFailure

	// FatalFrameFailure ends the loop.
	FatalFrameFailure

	// TransientFrameError is logged and the frame is skipped.
	TransientFrameError
)

var failureKindNames = map[FailureKind]string{
	FailureNone:             "none",
	StartupFailure:          "startup",
	RecoverableFrameFailure: "recoverable",
	FatalFrameFailure:       "fatal",
	TransientFrameError:     "transient",
}

func (k FailureKind) String() string {
	if n, ok := failureKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Classify maps an error from NewRenderer, Update or Render onto the loop's reaction.
//
// Parameters:
//   - err: the error, possibly wrapped
//
// Returns:
//   - FailureKind: the classification
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrStartup):
		return StartupFailure
	case errors.Is(err, backend.ErrSurfaceLost), errors.Is(err, backend.ErrSurfaceOutdated):
		return RecoverableFrameFailure
	case errors.Is(err, backend.ErrOutOfMemory), errors.Is(err, backend.ErrDeviceLost),
		errors.Is(err, ErrStaleAttachment), errors.Is(err, ErrDestroyed):
		return FatalFrameFailure
	}
	return TransientFrameError
}
