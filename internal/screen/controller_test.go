package screen

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/camrec/internal/domain"
	"github.com/genricoloni/camrec/internal/domain/mocks"
	"github.com/genricoloni/camrec/internal/permission"
	"github.com/genricoloni/camrec/internal/sensor"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type testConfig struct {
	interval   time.Duration
	backDevice string
}

func (testConfig) GetStorageRoot() string { return "/data" }
func (testConfig) GetTargetPath() string { return "/data/capturedVideo.mp4" }

func (c testConfig) GetSampleInterval() time.Duration {
	if c.interval == 0 {
		return 500 * time.Millisecond
	}
	return c.interval
}

func (c testConfig) GetBackDevice() string {
	if c.backDevice == "" {
		return "/dev/video0"
	}
	return c.backDevice
}

func (testConfig) GetAudioDevice() string { return "default" }
func (testConfig) GetFFmpegPath() string { return "ffmpeg" }
func (testConfig) GetPreviewInterval() time.Duration { return time.Second }
func (testConfig) UseMockSensor() bool { return true }

type flatSource struct{}

func (flatSource) Read(ctx context.Context) (domain.OrientationReading, error) {
	return domain.OrientationReading{Pitch: 1.5, Roll: -2.25, Yaw: 90}, nil
}

var backCam = domain.Device{ID: "video0", Name: "Integrated Camera", Path: "/dev/video0", Position: domain.PositionBack}

type fixture struct {
	ctrl      *Controller
	hub       *sensor.Hub
	camera    *mocks.MockCamera
	opener    *mocks.MockCameraOpener
	lister    *mocks.MockDeviceLister
	perms     *mocks.MockPermissionStore
	finalizer *mocks.MockFinalizer
	grabber   *mocks.MockFrameGrabber
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, testConfig{}, nil)
}

// newFixtureWith uses cfg and, when non-nil, a real permission store instead of the mock
func newFixtureWith(t *testing.T, cfg testConfig, perms domain.PermissionStore) *fixture {
	t.Helper()
	mc := gomock.NewController(t)
	f := &fixture{
		hub:       sensor.NewHub(zap.NewNop(), flatSource{}),
		camera:    mocks.NewMockCamera(mc),
		opener:    mocks.NewMockCameraOpener(mc),
		lister:    mocks.NewMockDeviceLister(mc),
		perms:     mocks.NewMockPermissionStore(mc),
		finalizer: mocks.NewMockFinalizer(mc),
		grabber:   mocks.NewMockFrameGrabber(mc),
	}
	if perms == nil {
		perms = f.perms
	}
	f.ctrl = NewController(zap.NewNop(), cfg, f.hub, f.lister, f.opener, perms, f.finalizer, f.grabber)
	return f
}

// mountReady mounts the controller with the given camera permission and a back camera present
func (f *fixture) mountReady(t *testing.T, cam domain.PermissionState) {
	t.Helper()
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionCamera).Return(cam, nil)
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionMicrophone).Return(domain.PermissionGranted, nil)
	f.lister.EXPECT().Devices(gomock.Any()).Return([]domain.Device{backCam}, nil)
	f.opener.EXPECT().Open(backCam).Return(f.camera, nil)
	if cam != domain.PermissionGranted {
		// Asked again once the device is bound
		f.perms.EXPECT().Request(gomock.Any(), domain.PermissionCamera).Return(cam, nil)
	}

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(f.ctrl.Unmount)
}

// captureStart makes the next StartRecording succeed and hands out its callbacks
func (f *fixture) captureStart() chan domain.RecordingCallbacks {
	cbs := make(chan domain.RecordingCallbacks, 1)
	f.camera.EXPECT().StartRecording(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cb domain.RecordingCallbacks) error {
			cbs <- cb
			return nil
		})
	return cbs
}

func TestController_StartWithoutCameraIsNoop(t *testing.T) {
	f := newFixture(t)

	// No expectations: any call on a mock fails the test
	f.ctrl.StartRecording(context.Background())
	f.ctrl.StopRecording(context.Background())

	s := f.ctrl.Snapshot()
	if s.Ready() || s.Recording != domain.RecordingIdle {
		t.Errorf("unexpected state: %+v", s)
	}
	if s.CanStart() || s.CanStop() {
		t.Error("controls must be disabled while loading")
	}
}

func TestController_MountRequestsPermissionsBeforeSubscribing(t *testing.T) {
	f := newFixtureWith(t, testConfig{interval: 250 * time.Millisecond}, nil)

	gomock.InOrder(
		f.perms.EXPECT().Request(gomock.Any(), domain.PermissionCamera).
			DoAndReturn(func(context.Context, domain.PermissionKind) (domain.PermissionState, error) {
				if f.hub.Subscribers() != 0 {
					t.Error("subscribed to orientation before permissions were decided")
				}
				return domain.PermissionGranted, nil
			}),
		f.perms.EXPECT().Request(gomock.Any(), domain.PermissionMicrophone).Return(domain.PermissionDenied, nil),
		f.lister.EXPECT().Devices(gomock.Any()).Return(nil, nil),
	)

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	// Second mount is ignored
	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("second Mount: %v", err)
	}

	if f.hub.Subscribers() != 1 {
		t.Errorf("Subscribers: want 1, got %d", f.hub.Subscribers())
	}
	if f.hub.UpdateInterval() != 250*time.Millisecond {
		t.Errorf("sample interval not applied: %v", f.hub.UpdateInterval())
	}

	s := f.ctrl.Snapshot()
	if s.Camera != domain.PermissionGranted || s.Microphone != domain.PermissionDenied {
		t.Errorf("permissions not recorded: %+v", s)
	}

	f.ctrl.Unmount()
	f.ctrl.Unmount()

	if f.hub.Subscribers() != 0 {
		t.Errorf("Subscribers after unmount: want 0, got %d", f.hub.Subscribers())
	}
	if f.hub.UpdateInterval() != sensor.DefaultUpdateInterval {
		t.Errorf("interval not released on unmount: %v", f.hub.UpdateInterval())
	}
}

func TestController_OrientationReachesState(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	if err := f.hub.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = f.hub.Stop(context.Background()) })

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r := f.ctrl.Snapshot().Reading; r.Yaw == 90 {
			if r.Pitch != 1.5 || r.Roll != -2.25 {
				t.Errorf("reading not replaced wholesale: %+v", r)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timeout: no reading delivered")
}

func TestController_LoadingUntilBackCamera(t *testing.T) {
	f := newFixture(t)
	front := domain.Device{ID: "video2", Path: "/dev/video2", Position: domain.PositionFront}

	f.perms.EXPECT().Request(gomock.Any(), gomock.Any()).Return(domain.PermissionGranted, nil).Times(2)
	gomock.InOrder(
		f.lister.EXPECT().Devices(gomock.Any()).Return([]domain.Device{front}, nil),
		f.lister.EXPECT().Devices(gomock.Any()).Return(nil, errors.New("sysfs unavailable")),
		f.lister.EXPECT().Devices(gomock.Any()).Return([]domain.Device{front, backCam}, nil),
	)
	f.opener.EXPECT().Open(backCam).Return(f.camera, nil).Times(1)

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.ctrl.Unmount()

	if f.ctrl.Snapshot().Ready() {
		t.Fatal("must stay loading without a back camera")
	}
	if err := f.ctrl.RefreshDevices(context.Background()); err == nil {
		t.Error("expected lister error")
	}
	if err := f.ctrl.RefreshDevices(context.Background()); err != nil {
		t.Fatalf("RefreshDevices: %v", err)
	}

	s := f.ctrl.Snapshot()
	if !s.Ready() || s.Device.Path != backCam.Path {
		t.Fatalf("back camera not bound: %+v", s)
	}
	if !s.CanStart() || s.CanStop() {
		t.Error("idle screen should enable start only")
	}

	// Once bound the lister is not consulted again
	if err := f.ctrl.RefreshDevices(context.Background()); err != nil {
		t.Errorf("RefreshDevices after bind: %v", err)
	}
}

func TestController_RecordingLifecycle(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	cbs := f.captureStart()

	video := domain.Video{Path: "/tmp/camrec-1.mp4", Duration: 3 * time.Second}
	saved := domain.SaveResult{Path: "/data/capturedVideo.mp4", Bytes: 1024}
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil)
	f.finalizer.EXPECT().Finalize(gomock.Any(), video).Return(saved)

	f.ctrl.StartRecording(context.Background())
	s := f.ctrl.Snapshot()
	if s.Recording != domain.RecordingActive || !s.CanStop() || s.CanStart() {
		t.Fatalf("want recording with stop enabled, got %+v", s)
	}

	f.ctrl.StopRecording(context.Background())
	if f.ctrl.Snapshot().Recording != domain.RecordingActive {
		t.Error("state must change only when the camera reports the outcome")
	}

	cb := <-cbs
	cb.OnFinished(video)

	s = f.ctrl.Snapshot()
	if s.Recording != domain.RecordingIdle {
		t.Errorf("want idle after finish, got %s", s.Recording)
	}
	if s.LastSave == nil || !s.LastSave.OK() || s.LastSave.Path != saved.Path {
		t.Errorf("save result not surfaced: %+v", s.LastSave)
	}
}

func TestController_StartFailureStaysIdle(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	f.camera.EXPECT().StartRecording(gomock.Any(), gomock.Any()).Return(errors.New("device busy"))

	f.ctrl.StartRecording(context.Background())

	if s := f.ctrl.Snapshot(); s.Recording != domain.RecordingIdle {
		t.Errorf("want idle, got %s", s.Recording)
	}
}

func TestController_SecondStartRejected(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	f.captureStart()
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil).AnyTimes()

	f.ctrl.StartRecording(context.Background())
	f.ctrl.StartRecording(context.Background())

	if s := f.ctrl.Snapshot(); s.Recording != domain.RecordingActive {
		t.Errorf("first session must keep running, got %s", s.Recording)
	}
}

func TestController_StopForwardedWhileIdle(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(errors.New("no active recording")).Times(1)

	f.ctrl.StopRecording(context.Background())

	if s := f.ctrl.Snapshot(); s.Recording != domain.RecordingIdle {
		t.Errorf("want idle, got %s", s.Recording)
	}
}

func TestController_PermissionGatesStart(t *testing.T) {
	for _, perm := range []domain.PermissionState{domain.PermissionDenied, domain.PermissionUnknown} {
		t.Run(string(perm), func(t *testing.T) {
			f := newFixture(t)
			f.mountReady(t, perm)

			// camera.StartRecording has no expectation
			f.ctrl.StartRecording(context.Background())

			s := f.ctrl.Snapshot()
			if s.CanStart() {
				t.Error("start must be disabled without camera permission")
			}
			if s.Recording != domain.RecordingIdle {
				t.Errorf("want idle, got %s", s.Recording)
			}
		})
	}
}

func TestController_PermissionRequestError(t *testing.T) {
	f := newFixture(t)
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionCamera).Return(domain.PermissionGranted, errors.New("portal down"))
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionMicrophone).Return(domain.PermissionGranted, nil)
	f.lister.EXPECT().Devices(gomock.Any()).Return(nil, nil)

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.ctrl.Unmount()

	if s := f.ctrl.Snapshot(); s.Camera != domain.PermissionUnknown {
		t.Errorf("failed request should leave camera unknown, got %s", s.Camera)
	}
}

func TestController_RecordingError(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	cbs := f.captureStart()

	f.ctrl.StartRecording(context.Background())
	cb := <-cbs
	cb.OnError(errors.New("ffmpeg exited: no space left"))

	s := f.ctrl.Snapshot()
	if s.Recording != domain.RecordingIdle {
		t.Errorf("want idle after error, got %s", s.Recording)
	}
	if s.LastError == "" {
		t.Error("error not surfaced")
	}
	if s.LastSave != nil {
		t.Error("nothing should be saved after an error")
	}
}

func TestController_FinalizeFailureSurfaced(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	cbs := f.captureStart()
	f.finalizer.EXPECT().Finalize(gomock.Any(), gomock.Any()).
		Return(domain.SaveResult{Path: "/data/capturedVideo.mp4", Err: errors.New("read-only file system")})

	f.ctrl.StartRecording(context.Background())
	cb := <-cbs
	cb.OnFinished(domain.Video{Path: "/tmp/x.mp4"})

	s := f.ctrl.Snapshot()
	if s.LastSave == nil || s.LastSave.OK() {
		t.Fatalf("failed save not surfaced: %+v", s.LastSave)
	}
	if s.Recording != domain.RecordingIdle {
		t.Errorf("want idle, got %s", s.Recording)
	}
}

func TestController_FinishBeforeStartReturns(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)
	f.camera.EXPECT().StartRecording(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cb domain.RecordingCallbacks) error {
			cb.OnError(errors.New("exited immediately"))
			return nil
		})

	f.ctrl.StartRecording(context.Background())

	if s := f.ctrl.Snapshot(); s.Recording != domain.RecordingIdle {
		t.Errorf("ended session must not be shown as recording, got %s", s.Recording)
	}
}

func TestController_UnmountStopsRecording(t *testing.T) {
	f := newFixture(t)
	f.perms.EXPECT().Request(gomock.Any(), gomock.Any()).Return(domain.PermissionGranted, nil).Times(2)
	f.lister.EXPECT().Devices(gomock.Any()).Return([]domain.Device{backCam}, nil)
	f.opener.EXPECT().Open(backCam).Return(f.camera, nil)
	f.captureStart()
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil).Times(1)

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.ctrl.StartRecording(context.Background())
	f.ctrl.Unmount()

	if f.ctrl.Snapshot().Mounted {
		t.Error("still mounted")
	}
}

func TestController_Preview(t *testing.T) {
	f := newFixture(t)

	img, err := f.ctrl.Preview(context.Background())
	if img != nil || err != nil {
		t.Errorf("loading preview: want nil, nil; got %v, %v", img, err)
	}

	f.mountReady(t, domain.PermissionGranted)
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	f.grabber.EXPECT().Grab(gomock.Any(), backCam).Return(frame, nil).Times(1)

	img, err = f.ctrl.Preview(context.Background())
	if err != nil || img != frame {
		t.Errorf("idle preview: got %v, %v", img, err)
	}

	f.captureStart()
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil).AnyTimes()
	f.ctrl.StartRecording(context.Background())

	// Grab has no further expectation while the device is busy
	if img, _ := f.ctrl.Preview(context.Background()); img != nil {
		t.Error("no preview while recording")
	}
}

func TestController_UpdatesCarryLatestState(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)

	var last State
	select {
	case last = <-f.ctrl.Updates():
	default:
		t.Fatal("no state published")
	}
	if !last.Ready() || last.Camera != domain.PermissionGranted {
		t.Errorf("latest update does not reflect bound camera: %+v", last)
	}
}

func TestController_CameraAppearsAfterMount(t *testing.T) {
	node := filepath.Join(t.TempDir(), "video0")
	cfg := testConfig{backDevice: node}
	f := newFixtureWith(t, cfg, permission.NewDeviceStore(zap.NewNop(), cfg))
	dev := domain.Device{ID: "video0", Name: "USB Camera", Path: node, Position: domain.PositionBack}

	gomock.InOrder(
		f.lister.EXPECT().Devices(gomock.Any()).Return(nil, nil),
		f.lister.EXPECT().Devices(gomock.Any()).Return([]domain.Device{dev}, nil),
	)
	f.opener.EXPECT().Open(dev).Return(f.camera, nil)

	if err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer f.ctrl.Unmount()

	if s := f.ctrl.Snapshot(); s.Camera != domain.PermissionDenied {
		t.Fatalf("camera without a node: want denied, got %s", s.Camera)
	}

	// The camera is plugged in
	if err := os.WriteFile(node, nil, 0600); err != nil {
		t.Fatalf("write node: %v", err)
	}
	if err := f.ctrl.RefreshDevices(context.Background()); err != nil {
		t.Fatalf("RefreshDevices: %v", err)
	}

	s := f.ctrl.Snapshot()
	if s.Camera != domain.PermissionGranted {
		t.Errorf("permission not re-evaluated on bind: %s", s.Camera)
	}
	if !s.CanStart() {
		t.Error("start should be enabled once the camera is accessible")
	}
}

func TestController_StartWaitsForPreviewGrab(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)

	grabbing := make(chan struct{})
	var released atomic.Bool
	f.grabber.EXPECT().Grab(gomock.Any(), backCam).
		DoAndReturn(func(ctx context.Context, _ domain.Device) (image.Image, error) {
			close(grabbing)
			<-ctx.Done()
			released.Store(true)
			return nil, ctx.Err()
		})
	f.camera.EXPECT().StartRecording(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.RecordingCallbacks) error {
			if !released.Load() {
				t.Error("recording started while the preview grab held the device")
			}
			return nil
		})
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil).AnyTimes()

	grabErr := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Preview(context.Background())
		grabErr <- err
	}()
	select {
	case <-grabbing:
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout: grab did not start")
	}

	// A second preview while the first holds the device returns nothing
	if img, err := f.ctrl.Preview(context.Background()); img != nil || err != nil {
		t.Errorf("overlapping preview: want nil, nil; got %v, %v", img, err)
	}

	f.ctrl.StartRecording(context.Background())

	if f.ctrl.Snapshot().Recording != domain.RecordingActive {
		t.Error("recording should start once the grab released the device")
	}
	select {
	case err := <-grabErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("grab should be cancelled, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout: grab did not return")
	}
}

func TestController_StartAbandonedWhileGrabStuck(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)

	grabbing := make(chan struct{})
	release := make(chan struct{})
	f.grabber.EXPECT().Grab(gomock.Any(), backCam).
		DoAndReturn(func(context.Context, domain.Device) (image.Image, error) {
			close(grabbing)
			<-release
			return nil, nil
		})

	grabDone := make(chan struct{})
	go func() {
		defer close(grabDone)
		_, _ = f.ctrl.Preview(context.Background())
	}()
	<-grabbing

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// No StartRecording expectation on the camera: it must not be reached
	f.ctrl.StartRecording(ctx)

	if f.ctrl.Snapshot().Recording != domain.RecordingIdle {
		t.Error("abandoned start must leave the screen idle")
	}

	close(release)
	<-grabDone

	f.captureStart()
	f.camera.EXPECT().StopRecording(gomock.Any()).Return(nil).AnyTimes()
	f.ctrl.StartRecording(context.Background())
	if f.ctrl.Snapshot().Recording != domain.RecordingActive {
		t.Error("start should succeed once the device is free")
	}
}

func TestController_MountFailureCanRetry(t *testing.T) {
	f := newFixtureWith(t, testConfig{interval: -time.Second}, nil)
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionCamera).Return(domain.PermissionGranted, nil).Times(2)
	f.perms.EXPECT().Request(gomock.Any(), domain.PermissionMicrophone).Return(domain.PermissionGranted, nil).Times(2)

	for i := 0; i < 2; i++ {
		if err := f.ctrl.Mount(context.Background()); err == nil {
			t.Fatalf("Mount %d: expected error for an invalid sample interval", i)
		}
		if f.ctrl.Snapshot().Mounted {
			t.Errorf("Mount %d: screen must not stay mounted after a failure", i)
		}
	}
	if f.hub.Subscribers() != 0 {
		t.Errorf("Subscribers: want 0, got %d", f.hub.Subscribers())
	}
}

func TestController_UnmountClosesUpdates(t *testing.T) {
	f := newFixture(t)
	f.mountReady(t, domain.PermissionGranted)

	f.ctrl.Unmount()

	timeout := time.After(3 * time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-f.ctrl.Updates():
			closed = !ok
		case <-timeout:
			t.Fatal("Timeout: updates channel not closed")
		}
	}

	// Late readings and callbacks are dropped without panicking
	f.ctrl.onReading(domain.OrientationReading{Yaw: 10})
	f.ctrl.onRecordingError(1, errors.New("late"))
	if f.ctrl.Snapshot().Reading.Yaw != 10 {
		t.Error("state should still track the latest reading")
	}
}
