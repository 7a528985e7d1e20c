//go:build !linux
// +build !linux

package camera

import "fmt"

func recordArgs(device, audio, output string) ([]string, error) {
	return nil, fmt.Errorf("camera capture is only supported on Linux systems")
}

func grabArgs(device string) ([]string, error) {
	return nil, fmt.Errorf("camera capture is only supported on Linux systems")
}
