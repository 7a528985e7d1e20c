package screen

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/camrec/internal/domain"
	"github.com/genricoloni/camrec/internal/sensor"
	"go.uber.org/zap"
)

// State is a snapshot of everything the screen renders
type State struct {
	// Device is the bound back camera, nil while loading
	Device *domain.Device
	// Camera and Microphone are the permission answers
	Camera     domain.PermissionState
	Microphone domain.PermissionState
	// Recording is the camera session state
	Recording domain.RecordingState
	// Reading is the latest orientation sample
	Reading domain.OrientationReading
	// LastSave is the outcome of the last finalized recording, nil if none
	LastSave *domain.SaveResult
	// LastError describes the last failed recording, empty if none
	LastError string
	Mounted   bool
}

// Ready reports whether a back camera is bound
func (s State) Ready() bool {
	return s.Device != nil
}

// CanStart reports whether the start control is enabled
func (s State) CanStart() bool {
	return s.Ready() && s.Recording == domain.RecordingIdle && s.Camera == domain.PermissionGranted
}

// CanStop reports whether the stop control is enabled
func (s State) CanStop() bool {
	return s.Ready() && s.Recording == domain.RecordingActive
}

// Controller composes the orientation feed, the camera session and the
// recording finalizer behind one screen.
// It publishes a State copy after every change.
type Controller struct {
	logger    *zap.Logger
	hub       *sensor.Hub
	lister    domain.DeviceLister
	opener    domain.CameraOpener
	perms     domain.PermissionStore
	finalizer domain.Finalizer
	grabber   domain.FrameGrabber
	interval  time.Duration
	target    string

	mu        sync.Mutex
	state     State
	camera    domain.Camera
	session   *sensor.Session
	unmounted bool
	starting  bool
	attempt   uint64 // id of the last started recording
	ended     uint64 // id of the last recording that reported its outcome

	// in-flight preview grab; the device cannot record until it returns
	grabDone   chan struct{}
	grabCancel context.CancelFunc

	pubMu   sync.Mutex
	closed  bool
	updates chan State
}

// NewController creates the screen controller
func NewController(
	logger *zap.Logger,
	cfg domain.Config,
	hub *sensor.Hub,
	lister domain.DeviceLister,
	opener domain.CameraOpener,
	perms domain.PermissionStore,
	finalizer domain.Finalizer,
	grabber domain.FrameGrabber,
) *Controller {
	return &Controller{
		logger:    logger,
		hub:       hub,
		lister:    lister,
		opener:    opener,
		perms:     perms,
		finalizer: finalizer,
		grabber:   grabber,
		interval:  cfg.GetSampleInterval(),
		target:    cfg.GetTargetPath(),
		state: State{
			Camera:     domain.PermissionUnknown,
			Microphone: domain.PermissionUnknown,
			Recording:  domain.RecordingIdle,
		},
		updates: make(chan State, 1),
	}
}

// TargetPath returns the fixed path recordings are saved to
func (c *Controller) TargetPath() string {
	return c.target
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates returns a channel carrying the latest state after each change.
// Intermediate states are dropped when the reader lags. The channel is
// closed by Unmount.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// Mount requests camera and microphone permission, then opens the
// orientation feed. Calling it again has no effect.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Mounted || c.unmounted {
		c.mu.Unlock()
		return nil
	}
	c.state.Mounted = true
	c.mu.Unlock()

	cam := c.request(ctx, domain.PermissionCamera)
	mic := c.request(ctx, domain.PermissionMicrophone)
	c.update(func(s *State) {
		s.Camera = cam
		s.Microphone = mic
	})

	sess, err := c.hub.OpenSession(c.interval)
	if err != nil {
		c.update(func(s *State) { s.Mounted = false })
		return fmt.Errorf("failed to open orientation session: %w", err)
	}
	if _, err := sess.Subscribe(c.onReading); err != nil {
		sess.Close()
		c.update(func(s *State) { s.Mounted = false })
		return fmt.Errorf("failed to subscribe to orientation: %w", err)
	}

	c.mu.Lock()
	if c.unmounted {
		// Unmounted while permissions were pending
		c.mu.Unlock()
		sess.Close()
		return nil
	}
	c.session = sess
	c.mu.Unlock()

	c.logger.Info("Screen mounted",
		zap.String("camera", string(cam)),
		zap.String("microphone", string(mic)),
		zap.Duration("sampleInterval", sess.Interval()))

	if err := c.RefreshDevices(ctx); err != nil {
		c.logger.Warn("Initial device scan failed", zap.Error(err))
	}
	return nil
}

func (c *Controller) request(ctx context.Context, kind domain.PermissionKind) domain.PermissionState {
	state, err := c.perms.Request(ctx, kind)
	if err != nil {
		c.logger.Error("Permission request failed", zap.String("kind", string(kind)), zap.Error(err))
		return domain.PermissionUnknown
	}
	return state
}

// Unmount closes the orientation feed once and stops an active recording
// so the capture process does not outlive the screen
func (c *Controller) Unmount() {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.unmounted = true
	c.state.Mounted = false
	cam := c.camera
	recording := c.state.Recording == domain.RecordingActive
	snapshot := c.state
	c.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
	c.publish(snapshot)
	c.closeUpdates()

	if recording && cam != nil {
		c.logger.Warn("Screen unmounted while recording, stopping capture")
		if err := cam.StopRecording(context.Background()); err != nil {
			c.logger.Error("Failed to stop recording on unmount", zap.Error(err))
		}
	}
	c.logger.Info("Screen unmounted")
}

// onReading replaces the displayed orientation unconditionally
func (c *Controller) onReading(r domain.OrientationReading) {
	c.update(func(s *State) {
		s.Reading = r
	})
}

// RefreshDevices binds the first back camera found. Once bound, the
// camera is kept and the lister is not consulted again.
func (c *Controller) RefreshDevices(ctx context.Context) error {
	c.mu.Lock()
	bound := c.camera != nil
	c.mu.Unlock()
	if bound {
		return nil
	}

	devs, err := c.lister.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	dev, ok := domain.BackDevice(devs)
	if !ok {
		c.logger.Debug("No back camera yet", zap.Int("devices", len(devs)))
		return nil
	}

	cam, err := c.opener.Open(dev)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dev.Path, err)
	}

	c.mu.Lock()
	if c.camera != nil {
		c.mu.Unlock()
		return nil
	}
	c.camera = cam
	c.state.Device = &dev
	perm := c.state.Camera
	snapshot := c.state
	c.mu.Unlock()
	c.publish(snapshot)

	c.logger.Info("Back camera ready", zap.String("device", dev.Path), zap.String("name", dev.Name))

	// The answer given at mount may predate the device node
	if perm != domain.PermissionGranted {
		perm = c.request(ctx, domain.PermissionCamera)
		c.update(func(s *State) { s.Camera = perm })
		c.logger.Info("Camera permission re-evaluated", zap.String("camera", string(perm)))
	}
	return nil
}

// StartRecording begins a recording session. It does nothing while no camera
// is bound, when camera permission was not granted, or while a session is
// already running. Failures are logged and leave the screen idle.
func (c *Controller) StartRecording(ctx context.Context) {
	c.mu.Lock()
	cam := c.camera
	if cam == nil {
		c.mu.Unlock()
		c.logger.Debug("Start ignored, no camera bound")
		return
	}
	if c.state.Camera != domain.PermissionGranted {
		perm := c.state.Camera
		c.mu.Unlock()
		c.logger.Warn("Start ignored, camera permission not granted", zap.String("permission", string(perm)))
		return
	}
	if c.state.Recording == domain.RecordingActive || c.starting {
		c.mu.Unlock()
		c.logger.Warn("Start ignored, already recording")
		return
	}
	c.starting = true
	c.attempt++
	id := c.attempt
	grabDone, grabCancel := c.grabDone, c.grabCancel
	c.mu.Unlock()

	if grabDone != nil {
		// A preview grab still holds the device
		grabCancel()
		select {
		case <-grabDone:
		case <-ctx.Done():
			c.mu.Lock()
			c.starting = false
			c.mu.Unlock()
			c.logger.Warn("Start abandoned while waiting for preview", zap.Error(ctx.Err()))
			return
		}
	}

	err := cam.StartRecording(ctx, domain.RecordingCallbacks{
		OnFinished: func(v domain.Video) { c.onFinished(id, v) },
		OnError:    func(err error) { c.onRecordingError(id, err) },
	})

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("Failed to start recording", zap.Error(err))
		return
	}
	if c.ended == id {
		// The session already reported its outcome
		c.mu.Unlock()
		return
	}
	c.state.Recording = domain.RecordingActive
	c.state.LastError = ""
	snapshot := c.state
	c.mu.Unlock()
	c.publish(snapshot)

	c.logger.Info("Recording started", zap.Uint64("attempt", id))
}

// StopRecording forwards a stop request to the bound camera whatever the
// recording state. The state changes once the camera reports the outcome.
func (c *Controller) StopRecording(ctx context.Context) {
	c.mu.Lock()
	cam := c.camera
	c.mu.Unlock()
	if cam == nil {
		c.logger.Debug("Stop ignored, no camera bound")
		return
	}

	if err := cam.StopRecording(ctx); err != nil {
		c.logger.Error("Failed to stop recording", zap.Error(err))
	}
}

func (c *Controller) onFinished(id uint64, v domain.Video) {
	c.logger.Info("Video recorded", zap.String("path", v.Path), zap.Duration("duration", v.Duration))
	c.update(func(s *State) {
		c.ended = id
		s.Recording = domain.RecordingIdle
	})

	res := c.finalizer.Finalize(context.Background(), v)
	if !res.OK() {
		c.logger.Error("Failed to save video", zap.String("target", res.Path), zap.Error(res.Err))
	}
	c.update(func(s *State) {
		s.LastSave = &res
	})
}

func (c *Controller) onRecordingError(id uint64, err error) {
	c.logger.Error("Recording failed", zap.Error(err))
	c.update(func(s *State) {
		c.ended = id
		s.Recording = domain.RecordingIdle
		s.LastError = err.Error()
	})
}

// Preview grabs a frame from the bound camera. While loading, recording or
// grabbing already (the device is busy) it returns nil without error.
// A start request cancels the grab and waits for it to release the device.
func (c *Controller) Preview(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	dev := c.state.Device
	busy := c.state.Recording == domain.RecordingActive || c.starting || c.grabDone != nil
	if dev == nil || busy || c.grabber == nil {
		c.mu.Unlock()
		return nil, nil
	}
	grabCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.grabDone, c.grabCancel = done, cancel
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.grabDone, c.grabCancel = nil, nil
		c.mu.Unlock()
		close(done)
	}()
	return c.grabber.Grab(grabCtx, *dev)
}

// update applies fn under the lock and publishes the result
func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.state
	c.mu.Unlock()
	c.publish(snapshot)
}

// publish hands the latest state to the reader, replacing one it has not taken yet
func (c *Controller) publish(s State) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}

// closeUpdates ends the update stream once; later publications are dropped
func (c *Controller) closeUpdates() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.updates)
}
