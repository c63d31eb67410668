// Package model - Model options.
package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Device selects the hardware the inference engine should use.
type Device string

const (
	// DeviceCPU runs the network on the CPU.
	DeviceCPU Device = "cpu"
	// DeviceGPU runs the network on the first CUDA device.
	DeviceGPU Device = "gpu"
)

// DeviceFromID maps the numeric device selector (0 = CPU, 1 = GPU) to a Device.
func DeviceFromID(id int) (Device, error) {
	switch id {
	case 0:
		return DeviceCPU, nil
	case 1:
		return DeviceGPU, nil
	default:
		return "", errors.Wrapf(ErrInvalidConfig, "device id %d out of range [0, 1]", id)
	}
}

// UseGPU reports whether the device requests GPU acceleration.
func (d Device) UseGPU() bool {
	return strings.EqualFold(string(d), string(DeviceGPU))
}

// Validate checks that the device is known. The empty device means CPU.
func (d Device) Validate() error {
	switch Device(strings.ToLower(string(d))) {
	case "", DeviceCPU, DeviceGPU:
		return nil
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown device %q", string(d))
	}
}
