package finalizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Mover relocates finished recordings to the fixed target path,
// replacing whatever a previous recording left there
type Mover struct {
	logger *zap.Logger
	target string
	rename func(oldpath, newpath string) error
	remove func(name string) error
}

// NewMover creates a mover for the configured target path
func NewMover(logger *zap.Logger, cfg domain.Config) *Mover {
	return &Mover{
		logger: logger,
		target: cfg.GetTargetPath(),
		rename: os.Rename,
		remove: os.Remove,
	}
}

// Finalize moves v.Path to the target path
func (m *Mover) Finalize(ctx context.Context, v domain.Video) domain.SaveResult {
	res := domain.SaveResult{Path: m.target}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if v.Path == "" {
		res.Err = errors.New("recording has no file path")
		return res
	}

	if err := os.MkdirAll(filepath.Dir(m.target), 0755); err != nil {
		res.Err = fmt.Errorf("failed to create storage directory: %w", err)
		return res
	}

	err := m.rename(v.Path, m.target)
	if errors.Is(err, unix.EXDEV) {
		// Temp dir on another filesystem: rename cannot cross it
		m.logger.Debug("Cross-device move, copying", zap.String("from", v.Path), zap.String("to", m.target))
		if err = copyReplace(v.Path, m.target); err == nil {
			// The recording is saved; a leftover temp file is not a failure
			if rmErr := m.remove(v.Path); rmErr != nil {
				m.logger.Warn("Failed to remove temporary recording", zap.String("path", v.Path), zap.Error(rmErr))
			}
		}
	}
	if err != nil {
		res.Err = fmt.Errorf("failed to move recording to %s: %w", m.target, err)
		return res
	}

	info, err := os.Stat(m.target)
	if err != nil {
		res.Err = fmt.Errorf("failed to stat saved recording: %w", err)
		return res
	}
	res.Bytes = info.Size()

	m.logger.Info("Video saved",
		zap.String("path", m.target),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("duration", v.Duration))
	return res
}

// copyReplace copies src over dst through a sibling temp file
func copyReplace(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, in.Close()) }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".camrec-partial-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Sync(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
