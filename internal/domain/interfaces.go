package domain

import (
	"context"
	"image"
	"time"
)

// Camera is an opened capture device able to run one recording session at a time.
//
//go:generate mockgen -destination=mocks/camera_mock.go -package=mocks github.com/genricoloni/camrec/internal/domain Camera,CameraOpener,DeviceLister,PermissionStore,Finalizer,FrameGrabber
type Camera interface {
	// StartRecording begins an asynchronous recording session.
	// It returns once the session is running; the outcome is delivered through cb.
	StartRecording(ctx context.Context, cb RecordingCallbacks) error

	// StopRecording asks the active session to stop.
	// It does not wait for the session to finalize.
	StopRecording(ctx context.Context) error
}

// CameraOpener binds a Camera to a device
type CameraOpener interface {
	Open(dev Device) (Camera, error)
}

// DeviceLister enumerates the capture devices currently present
type DeviceLister interface {
	Devices(ctx context.Context) ([]Device, error)
}

// PermissionStore answers capability requests
type PermissionStore interface {
	// Request asks for a capability and returns the resulting state
	Request(ctx context.Context, kind PermissionKind) (PermissionState, error)
}

// Finalizer relocates a finished recording to its stable location
type Finalizer interface {
	// Finalize moves the temporary file of v to the target path.
	// Failures are reported in the result, never dropped.
	Finalize(ctx context.Context, v Video) SaveResult
}

// FrameGrabber captures a single still frame from a device for the preview
type FrameGrabber interface {
	Grab(ctx context.Context, dev Device) (image.Image, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetStorageRoot returns the directory that receives the finished recording
	GetStorageRoot() string

	// GetTargetPath returns the fixed path every recording is moved to
	GetTargetPath() string

	// GetSampleInterval returns the orientation sampling interval
	GetSampleInterval() time.Duration

	// GetBackDevice returns the device node treated as the back camera
	GetBackDevice() string

	// GetAudioDevice returns the ALSA capture device used for sound
	GetAudioDevice() string

	// GetFFmpegPath returns the ffmpeg binary used for capture
	GetFFmpegPath() string

	// GetPreviewInterval returns how often a preview frame is grabbed
	GetPreviewInterval() time.Duration

	// UseMockSensor reports whether the synthetic orientation source is used
	UseMockSensor() bool
}
