package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/zap"
)

// DefaultSysfsRoot is where the kernel lists video4linux devices
const DefaultSysfsRoot = "/sys/class/video4linux"

// SysfsLister enumerates V4L2 capture devices from sysfs
type SysfsLister struct {
	logger  *zap.Logger
	root    string
	devRoot string
	back    string
}

// NewSysfsLister creates a lister that reports the configured back device
// with PositionBack and every other capture node as external
func NewSysfsLister(logger *zap.Logger, cfg domain.Config) *SysfsLister {
	return &SysfsLister{
		logger:  logger,
		root:    DefaultSysfsRoot,
		devRoot: "/dev",
		back:    cfg.GetBackDevice(),
	}
}

// Devices returns the capture devices currently present
func (l *SysfsLister) Devices(ctx context.Context) ([]domain.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := filepath.Glob(filepath.Join(l.root, "video*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.root, err)
	}

	devices := make([]domain.Device, 0, len(entries))
	for _, entry := range entries {
		id := filepath.Base(entry)

		// Drivers register extra metadata nodes per camera; only index 0 captures
		if idx, err := os.ReadFile(filepath.Join(entry, "index")); err == nil && strings.TrimSpace(string(idx)) != "0" {
			continue
		}

		name := id
		if data, err := os.ReadFile(filepath.Join(entry, "name")); err == nil {
			name = strings.TrimSpace(string(data))
		}

		dev := domain.Device{
			ID:       id,
			Name:     name,
			Path:     filepath.Join(l.devRoot, id),
			Position: domain.PositionExternal,
		}
		if dev.Path == l.back {
			dev.Position = domain.PositionBack
		}
		devices = append(devices, dev)
	}

	l.logger.Debug("Capture devices listed", zap.Int("count", len(devices)))
	return devices, nil
}
