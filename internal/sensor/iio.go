package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultIIORoot is where the kernel exposes industrial I/O devices
const DefaultIIORoot = "/sys/bus/iio/devices"

// ErrNoAccelerometer is returned when no IIO device exposes accelerometer channels
var ErrNoAccelerometer = errors.New("no IIO accelerometer found")

// IIOSource derives pitch and roll from the IIO accelerometer and yaw from
// the iio-sensor-proxy compass, when one is present
type IIOSource struct {
	logger     *zap.Logger
	devDir     string
	bus        DBusClient
	hasCompass bool
}

// NewIIOSource locates an accelerometer under root and, if bus is not nil,
// claims the compass of iio-sensor-proxy. The bus is owned by the source afterwards.
func NewIIOSource(logger *zap.Logger, root string, bus DBusClient) (*IIOSource, error) {
	devDir, err := findAccelerometer(root)
	if err != nil {
		return nil, err
	}

	s := &IIOSource{logger: logger, devDir: devDir, bus: bus}
	logger.Info("IIO accelerometer found", zap.String("device", devDir))

	if bus == nil {
		return s, nil
	}

	variant, err := bus.GetProperty(sensorProxyName, compassPath, hasCompassProperty)
	if err != nil {
		logger.Warn("Compass unavailable, yaw will read 0", zap.Error(err))
		return s, nil
	}
	if has, ok := variant.Value().(bool); !ok || !has {
		logger.Info("Sensor proxy reports no compass, yaw will read 0")
		return s, nil
	}
	if err := bus.Call(sensorProxyName, compassPath, compassInterface+".ClaimCompass"); err != nil {
		logger.Warn("Failed to claim compass, yaw will read 0", zap.Error(err))
		return s, nil
	}
	s.hasCompass = true
	logger.Info("Compass claimed via iio-sensor-proxy")
	return s, nil
}

// findAccelerometer returns the first IIO device directory with accelerometer channels
func findAccelerometer(root string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "iio:device*"))
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", root, err)
	}
	for _, dir := range matches {
		if _, err := os.Stat(filepath.Join(dir, "in_accel_x_raw")); err == nil {
			return dir, nil
		}
	}
	return "", ErrNoAccelerometer
}

// Read samples the accelerometer (and compass) once
func (s *IIOSource) Read(ctx context.Context) (domain.OrientationReading, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrientationReading{}, err
	}

	scale, err := s.readFloat("in_accel_scale")
	if err != nil {
		scale = 1
	}

	var axes [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		raw, err := s.readFloat("in_accel_" + axis + "_raw")
		if err != nil {
			return domain.OrientationReading{}, err
		}
		axes[i] = raw * scale
	}

	reading := tilt(axes[0], axes[1], axes[2])

	if s.hasCompass {
		variant, err := s.bus.GetProperty(sensorProxyName, compassPath, compassHeadingProperty)
		if err != nil {
			return domain.OrientationReading{}, fmt.Errorf("failed to read compass heading: %w", err)
		}
		heading, ok := variant.Value().(float64)
		if !ok {
			return domain.OrientationReading{}, fmt.Errorf("invalid compass heading format")
		}
		reading.Yaw = heading
	}

	return reading, nil
}

// tilt converts a gravity vector into pitch and roll, in degrees
func tilt(x, y, z float64) domain.OrientationReading {
	const rad2deg = 180 / math.Pi
	return domain.OrientationReading{
		Pitch: math.Atan2(-x, math.Hypot(y, z)) * rad2deg,
		Roll:  math.Atan2(y, z) * rad2deg,
	}
}

func (s *IIOSource) readFloat(name string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(s.devDir, name))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", name, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value in %s: %w", name, err)
	}
	return v, nil
}

// Close releases the compass claim and the bus connection
func (s *IIOSource) Close() error {
	if s.bus == nil {
		return nil
	}
	var err error
	if s.hasCompass {
		err = multierr.Append(err, s.bus.Call(sensorProxyName, compassPath, compassInterface+".ReleaseCompass"))
		s.hasCompass = false
	}
	err = multierr.Append(err, s.bus.Close())
	s.bus = nil
	return err
}

// NewSource picks the orientation source for this machine: the synthetic one when
// requested, otherwise the IIO accelerometer, falling back to synthetic values
// when no accelerometer is present
func NewSource(logger *zap.Logger, cfg domain.Config) Source {
	if cfg.UseMockSensor() {
		logger.Info("Using MOCK orientation source (development mode)")
		return NewMockSource()
	}

	var bus DBusClient
	if client, err := NewStdDBusClient(); err != nil {
		logger.Warn("Failed to connect to system bus, compass disabled", zap.Error(err))
	} else {
		bus = client
	}

	src, err := NewIIOSource(logger, DefaultIIORoot, bus)
	if err != nil {
		logger.Warn("No orientation hardware, falling back to MOCK source", zap.Error(err))
		if bus != nil {
			if cerr := bus.Close(); cerr != nil {
				logger.Warn("Failed to close D-Bus connection", zap.Error(cerr))
			}
		}
		return NewMockSource()
	}
	return src
}
