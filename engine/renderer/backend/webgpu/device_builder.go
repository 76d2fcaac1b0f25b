package webgpu

// DeviceBuilderOption is a functional option for configuring a webgpu device.
type DeviceBuilderOption func(*device)

// WithForceFallbackAdapter forces the software fallback adapter.
// Useful on machines without a supported GPU; much slower.
//
// Parameters:
//   - force: whether to request the fallback adapter
//
// Returns:
//   - DeviceBuilderOption: a function that sets the fallback adapter flag
func WithForceFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *device) {
		d.forceFallback = force
	}
}

// WithLabel sets the debug label of the device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - DeviceBuilderOption: a function that sets the device label
func WithLabel(label string) DeviceBuilderOption {
	return func(d *device) {
		d.label = label
	}
}
