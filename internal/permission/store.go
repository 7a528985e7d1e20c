package permission

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// DefaultSoundRoot holds the ALSA device nodes
const DefaultSoundRoot = "/dev/snd"

// DeviceStore grants a capability when the calling user can open the device
// nodes behind it. Every request looks at the nodes again.
type DeviceStore struct {
	logger    *zap.Logger
	camera    string
	soundRoot string
	access    func(path string, mode uint32) error
}

// NewDeviceStore checks the configured back camera node and the ALSA control nodes
func NewDeviceStore(logger *zap.Logger, cfg domain.Config) *DeviceStore {
	return &DeviceStore{
		logger:    logger,
		camera:    cfg.GetBackDevice(),
		soundRoot: DefaultSoundRoot,
		access:    unix.Access,
	}
}

// Request evaluates kind against the device nodes present now
func (s *DeviceStore) Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionUnknown, err
	}

	var nodes []string
	switch kind {
	case domain.PermissionCamera:
		nodes = []string{s.camera}
	case domain.PermissionMicrophone:
		matches, err := filepath.Glob(filepath.Join(s.soundRoot, "pcmC*c"))
		if err != nil {
			return domain.PermissionUnknown, fmt.Errorf("failed to scan %s: %w", s.soundRoot, err)
		}
		nodes = matches
	default:
		return domain.PermissionUnknown, fmt.Errorf("unknown permission kind %q", kind)
	}

	state, reason := s.evaluate(nodes)

	if state == domain.PermissionGranted {
		s.logger.Info("Permission granted", zap.String("kind", string(kind)))
	} else {
		s.logger.Warn("Permission denied", zap.String("kind", string(kind)), zap.Error(reason))
	}
	return state, nil
}

// evaluate grants when at least one node is readable and writable
func (s *DeviceStore) evaluate(nodes []string) (domain.PermissionState, error) {
	if len(nodes) == 0 {
		return domain.PermissionDenied, errors.New("no device node present")
	}
	var lastErr error
	for _, node := range nodes {
		if err := s.access(node, unix.R_OK|unix.W_OK); err != nil {
			lastErr = fmt.Errorf("%s: %w", node, err)
			continue
		}
		return domain.PermissionGranted, nil
	}
	return domain.PermissionDenied, lastErr
}
