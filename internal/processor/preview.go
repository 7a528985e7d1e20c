package processor

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	// DefaultPreviewCols is the preview width in terminal cells
	DefaultPreviewCols = 48
	// DefaultPreviewRows is the preview height in terminal cells
	DefaultPreviewRows = 18

	halfBlock = "▀"
)

// PreviewRenderer turns camera frames into terminal art.
// Every cell shows two vertically stacked pixels: the upper one as the
// foreground of a half block and the lower one as its background.
// Resize may be called while a frame renders.
type PreviewRenderer struct {
	logger *zap.Logger

	mu   sync.Mutex
	cols int
	rows int
}

// NewPreviewRenderer creates a renderer with the default preview size
func NewPreviewRenderer(logger *zap.Logger) *PreviewRenderer {
	return &PreviewRenderer{
		logger: logger,
		cols:   DefaultPreviewCols,
		rows:   DefaultPreviewRows,
	}
}

// Resize changes the preview size in cells. Non-positive values are ignored.
func (p *PreviewRenderer) Resize(cols, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cols > 0 {
		p.cols = cols
	}
	if rows > 0 {
		p.rows = rows
	}
}

// Render scales img to fill the preview area and returns one line per cell row
func (p *PreviewRenderer) Render(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no frame to render")
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	p.mu.Lock()
	cols, rows := p.cols, p.rows
	p.mu.Unlock()

	// Center crop to the cell grid, two pixels per cell vertically
	frame := imaging.Fill(img, cols, rows*2, imaging.Center, imaging.Box)
	p.logger.Debug("Rendering preview",
		zap.Int("srcW", bounds.Dx()), zap.Int("srcH", bounds.Dy()),
		zap.Int("cols", cols), zap.Int("rows", rows))

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := frame.NRGBAAt(col, row*2)
			bottom := frame.NRGBAAt(col, row*2+1)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top.R, top.G, top.B))).
				Background(lipgloss.Color(hex(bottom.R, bottom.G, bottom.B)))
			b.WriteString(cell.Render(halfBlock))
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
