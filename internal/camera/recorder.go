package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	defaultStopTimeout = 5 * time.Second
	stderrTail         = 4096
)

// ErrAlreadyRecording is returned when a session is started while another one runs
var ErrAlreadyRecording = errors.New("recording already in progress")

// FFmpegRecorder records one device with ffmpeg, one session at a time
type FFmpegRecorder struct {
	logger      *zap.Logger
	device      domain.Device
	binary      string
	audio       string
	tempDir     string
	stopTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	session *recording
}

// recording is a running ffmpeg process
type recording struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *tailBuffer
	output  string
	started time.Time
	done    chan struct{}
	stop    sync.Once
}

// NewFFmpegRecorder creates a recorder bound to dev
func NewFFmpegRecorder(logger *zap.Logger, dev domain.Device, binary, audio string) *FFmpegRecorder {
	return &FFmpegRecorder{
		logger:      logger.With(zap.String("device", dev.Path)),
		device:      dev,
		binary:      binary,
		audio:       audio,
		tempDir:     os.TempDir(),
		stopTimeout: defaultStopTimeout,
		now:         time.Now,
	}
}

// StartRecording spawns ffmpeg writing to a fresh temporary file.
// The session outlives ctx; it ends through StopRecording or a capture failure.
func (r *FFmpegRecorder) StartRecording(ctx context.Context, cb domain.RecordingCallbacks) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	f, err := os.CreateTemp(r.tempDir, "camrec-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	output := f.Name()
	if err := f.Close(); err != nil {
		return multierr.Append(fmt.Errorf("failed to close temporary file: %w", err), os.Remove(output))
	}

	args, err := recordArgs(r.device.Path, r.audio, output)
	if err != nil {
		return multierr.Append(err, os.Remove(output))
	}

	cmd := exec.Command(r.binary, args...)
	cmd.WaitDelay = r.stopTimeout
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return multierr.Append(fmt.Errorf("failed to open ffmpeg stdin: %w", err), os.Remove(output))
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	r.logger.Debug("Starting capture", zap.String("binary", r.binary), zap.Strings("args", args))

	if err := cmd.Start(); err != nil {
		return multierr.Append(fmt.Errorf("failed to start %s: %w", r.binary, err), os.Remove(output))
	}

	s := &recording{
		cmd:     cmd,
		stdin:   stdin,
		stderr:  stderr,
		output:  output,
		started: r.now(),
		done:    make(chan struct{}),
	}
	r.session = s
	go r.wait(s, cb)

	r.logger.Info("Recording started", zap.String("tmp", output))
	return nil
}

// wait reaps the process and reports the outcome through cb
func (r *FFmpegRecorder) wait(s *recording, cb domain.RecordingCallbacks) {
	err := s.cmd.Wait()
	elapsed := r.now().Sub(s.started)
	close(s.done)

	// Clear the session before the callbacks so they may start a new one
	r.mu.Lock()
	if r.session == s {
		r.session = nil
	}
	r.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("capture failed: %w (output: %s)", err, s.stderr.String())
		if rmErr := os.Remove(s.output); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = multierr.Append(err, rmErr)
		}
		r.logger.Warn("Recording ended with error", zap.Error(err), zap.Duration("elapsed", elapsed))
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}

	r.logger.Info("Recording finished", zap.String("tmp", s.output), zap.Duration("elapsed", elapsed))
	if cb.OnFinished != nil {
		cb.OnFinished(domain.Video{Path: s.output, Duration: elapsed})
	}
}

// StopRecording asks ffmpeg to finalize the file and returns without waiting.
// A process that ignores the request is killed after the stop timeout.
// With no active session it does nothing.
func (r *FFmpegRecorder) StopRecording(ctx context.Context) error {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()

	if s == nil {
		r.logger.Debug("Stop requested with no active recording")
		return nil
	}

	var err error
	s.stop.Do(func() {
		if _, werr := io.WriteString(s.stdin, "q\n"); werr != nil {
			err = fmt.Errorf("failed to signal ffmpeg: %w", werr)
		}
		err = multierr.Append(err, s.stdin.Close())
		go r.enforceStop(s)
	})
	if err != nil {
		r.logger.Warn("Graceful stop failed, process will be killed", zap.Error(err))
	}
	return nil
}

func (r *FFmpegRecorder) enforceStop(s *recording) {
	timer := time.NewTimer(r.stopTimeout)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
		r.logger.Warn("ffmpeg did not exit in time, killing it", zap.Duration("timeout", r.stopTimeout))
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			r.logger.Error("Failed to kill ffmpeg", zap.Error(err))
		}
	}
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// FFmpegOpener binds FFmpegRecorders to devices
type FFmpegOpener struct {
	logger *zap.Logger
	cfg    domain.Config
}

// NewFFmpegOpener creates an opener using the configured ffmpeg and audio device
func NewFFmpegOpener(logger *zap.Logger, cfg domain.Config) *FFmpegOpener {
	return &FFmpegOpener{logger: logger, cfg: cfg}
}

// Open returns a recorder for dev
func (o *FFmpegOpener) Open(dev domain.Device) (domain.Camera, error) {
	if dev.Path == "" {
		return nil, fmt.Errorf("device %q has no node path", dev.ID)
	}
	if _, err := exec.LookPath(o.cfg.GetFFmpegPath()); err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}
	o.logger.Info("Camera bound", zap.String("device", dev.Path), zap.String("name", dev.Name))
	return NewFFmpegRecorder(o.logger, dev, o.cfg.GetFFmpegPath(), o.cfg.GetAudioDevice()), nil
}
