package model

import (
	"errors"
	"fmt"
)

// Table errors.
var (
	ErrNoSuchDevice    = errors.New("no such device")
	ErrDuplicateSerial = errors.New("duplicate device serial")
)

// Reference table parameters.
const (
	// DefaultDeviceSize is the buffer size of each reference device.
	DefaultDeviceSize = 512

	// DefaultDeviceCount is the number of reference devices.
	DefaultDeviceCount = 4
)

// DeviceSpec holds the construction parameters of one device.
type DeviceSpec struct {
	Size       int
	Serial     string
	Permission Permission
}

// DefaultSpecs returns the reference device table: four 512 byte devices
// declaring RDONLY, WRONLY, RDWR and RDWR.
func DefaultSpecs() []DeviceSpec {
	return []DeviceSpec{
		{Size: DefaultDeviceSize, Serial: "PCDXYZ_1_Q", Permission: PermReadOnly},
		{Size: DefaultDeviceSize, Serial: "PCDXYZ_2_Q", Permission: PermWriteOnly},
		{Size: DefaultDeviceSize, Serial: "PCDXYZ_3_Q", Permission: PermReadWrite},
		{Size: DefaultDeviceSize, Serial: "PCDXYZ_4_Q", Permission: PermReadWrite},
	}
}

// Table is the fixed collection of devices served by one driver.
// It is immutable after NewTable returns.
type Table struct {
	devices []*Device
}

// NewTable builds a table from specs, assigning minor numbers in order
// starting at 0.
func NewTable(specs ...DeviceSpec) (*Table, error) {
	seen := make(map[string]int, len(specs))
	devices := make([]*Device, 0, len(specs))
	for i, spec := range specs {
		if prev, ok := seen[spec.Serial]; ok && spec.Serial != "" {
			return nil, fmt.Errorf("%w: %q used by minors %d and %d", ErrDuplicateSerial, spec.Serial, prev, i)
		}
		seen[spec.Serial] = i

		dev, err := NewDevice(i, spec.Size, spec.Serial, spec.Permission)
		if err != nil {
			return nil, fmt.Errorf("minor %d: %w", i, err)
		}
		devices = append(devices, dev)
	}
	return &Table{devices: devices}, nil
}

// NewDefaultTable builds the reference table.
func NewDefaultTable() *Table {
	t, err := NewTable(DefaultSpecs()...)
	if err != nil {
		panic(fmt.Sprintf("reference device table: %v", err))
	}
	return t
}

// Lookup returns the device with the given minor number.
func (t *Table) Lookup(minor int) (*Device, error) {
	if minor < 0 || minor >= len(t.devices) {
		return nil, fmt.Errorf("%w: minor %d", ErrNoSuchDevice, minor)
	}
	return t.devices[minor], nil
}

// Len returns the number of devices.
func (t *Table) Len() int {
	return len(t.devices)
}

// Devices returns the devices in minor order.
func (t *Table) Devices() []*Device {
	result := make([]*Device, len(t.devices))
	copy(result, t.devices)
	return result
}
