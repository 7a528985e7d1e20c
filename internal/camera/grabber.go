package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/zap"
)

// FFmpegGrabber captures single preview frames with ffmpeg
type FFmpegGrabber struct {
	logger *zap.Logger
	binary string
}

// NewFFmpegGrabber creates a grabber using the configured ffmpeg
func NewFFmpegGrabber(logger *zap.Logger, cfg domain.Config) *FFmpegGrabber {
	return &FFmpegGrabber{logger: logger, binary: cfg.GetFFmpegPath()}
}

// Grab returns one decoded frame from dev
func (g *FFmpegGrabber) Grab(ctx context.Context, dev domain.Device) (image.Image, error) {
	args, err := grabArgs(dev.Path)
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to grab frame from %s: %w (output: %s)", dev.Path, err, stderr.String())
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	g.logger.Debug("Preview frame grabbed", zap.Int("bytes", len(out)),
		zap.Int("w", img.Bounds().Dx()), zap.Int("h", img.Bounds().Dy()))
	return img, nil
}
