package sensor

import (
	"context"
	"math"
	"time"

	"github.com/genricoloni/camrec/internal/domain"
)

// Source produces one orientation sample per call
type Source interface {
	Read(ctx context.Context) (domain.OrientationReading, error)
}

// MockSource generates a smoothly changing pose, for development without sensors
type MockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a synthetic orientation source
func NewMockSource() *MockSource {
	return &MockSource{start: time.Now(), now: time.Now}
}

// Read returns the pose for the elapsed time since creation
func (m *MockSource) Read(ctx context.Context) (domain.OrientationReading, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrientationReading{}, err
	}
	elapsed := m.now().Sub(m.start).Seconds()

	return domain.OrientationReading{
		Pitch: 15 * math.Cos(elapsed*0.7),
		Roll:  20 * math.Sin(elapsed),
		Yaw:   math.Mod(elapsed*30, 360),
	}, nil
}
