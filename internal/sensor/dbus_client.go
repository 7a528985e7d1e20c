package sensor

import (
	"github.com/godbus/dbus/v5"
)

const (
	sensorProxyName        = "net.hadess.SensorProxy"
	compassPath            = "/net/hadess/SensorProxy/Compass"
	compassInterface       = "net.hadess.SensorProxy.Compass"
	compassHeadingProperty = compassInterface + ".CompassHeading"
	hasCompassProperty     = compassInterface + ".HasCompass"
)

// DBusClient defines the D-Bus operations used to talk to iio-sensor-proxy.
// This abstraction allows us to fake the bus in tests.
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// Call invokes a method without arguments and discards its reply
	Call(dest, path, method string) error

	// GetProperty retrieves a property from a D-Bus object
	GetProperty(dest, path, prop string) (dbus.Variant, error)
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a real D-Bus client connected to the system bus,
// where iio-sensor-proxy lives
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// Call invokes a method on a D-Bus object
func (c *StdDBusClient) Call(dest, path, method string) error {
	return c.conn.Object(dest, dbus.ObjectPath(path)).Call(method, 0).Err
}

// GetProperty retrieves a property from a D-Bus object
func (c *StdDBusClient) GetProperty(dest, path, prop string) (dbus.Variant, error) {
	return c.conn.Object(dest, dbus.ObjectPath(path)).GetProperty(prop)
}
