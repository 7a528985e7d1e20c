package domain

import "time"

// OrientationReading is one orientation sample, in degrees.
// It is replaced wholesale on every sensor callback; no history is kept.
type OrientationReading struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

// Position describes where a camera faces relative to the device
type Position string

const (
	// PositionBack is the camera the screen records from
	PositionBack Position = "back"
	// PositionFront is a user-facing camera
	PositionFront Position = "front"
	// PositionExternal is any other capture device
	PositionExternal Position = "external"
)

// Device is a video capture device reported by a DeviceLister
type Device struct {
	// ID is a stable identifier (e.g. "video0")
	ID string
	// Name is the human readable name reported by the driver
	Name string
	// Path is the device node (e.g. "/dev/video0")
	Path string
	// Position of the camera
	Position Position
}

// BackDevice returns the first back-facing device of devs
func BackDevice(devs []Device) (Device, bool) {
	for _, d := range devs {
		if d.Position == PositionBack {
			return d, true
		}
	}
	return Device{}, false
}

// Video is the completion event of a recording session.
// Path points to the temporary file written by the camera subsystem.
type Video struct {
	Path     string
	Duration time.Duration
}

// RecordingState is the screen's view of the camera session
type RecordingState string

const (
	// RecordingIdle means no session is active
	RecordingIdle RecordingState = "idle"
	// RecordingActive means a session was started and has not completed yet
	RecordingActive RecordingState = "recording"
)

// PermissionKind identifies a capability requested from the permission store
type PermissionKind string

const (
	PermissionCamera     PermissionKind = "camera"
	PermissionMicrophone PermissionKind = "microphone"
)

// PermissionState is the tri-state answer of the permission store
type PermissionState string

const (
	// PermissionUnknown means the permission was never requested
	PermissionUnknown PermissionState = "unknown"
	// PermissionGranted means the capability is usable
	PermissionGranted PermissionState = "granted"
	// PermissionDenied means the capability was refused
	PermissionDenied PermissionState = "denied"
)

// SaveResult is the outcome of relocating a finished recording
type SaveResult struct {
	// Path is the target path the recording was (or should have been) moved to
	Path string
	// Bytes is the size of the saved file, zero on failure
	Bytes int64
	// Err is the failure reason, nil on success
	Err error
}

// OK reports whether the recording was saved
func (r SaveResult) OK() bool {
	return r.Err == nil
}

// RecordingCallbacks are invoked asynchronously by a Camera once a session ends.
// Exactly one of them is called per started session.
type RecordingCallbacks struct {
	OnFinished func(Video)
	OnError    func(error)
}
