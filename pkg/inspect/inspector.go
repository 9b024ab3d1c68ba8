package inspect

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pcd-emu/pcd-go/pkg/model"
	"github.com/pcd-emu/pcd-go/pkg/service"
)

// Inspector errors.
var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrDeviceNotFound   = errors.New("device not found")
)

// Inspector reads informational attributes from a running driver.
type Inspector struct {
	driver *service.Driver
}

// NewInspector creates a new Inspector for the given driver.
func NewInspector(driver *service.Driver) *Inspector {
	return &Inspector{driver: driver}
}

// Driver returns the underlying driver.
func (i *Inspector) Driver() *service.Driver {
	return i.driver
}

// DeviceRow is one device's attributes for display.
type DeviceRow struct {
	model.DeviceInfo
	OpenSessions int
}

// InspectTable returns a row for every device, in minor order.
func (i *Inspector) InspectTable() []DeviceRow {
	devices := i.driver.Table().Devices()
	rows := make([]DeviceRow, 0, len(devices))
	for _, dev := range devices {
		rows = append(rows, i.row(dev))
	}
	return rows
}

// InspectDevice returns the attributes of one device.
func (i *Inspector) InspectDevice(minor int) (*DeviceRow, error) {
	dev, err := i.driver.Table().Lookup(minor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
	}
	row := i.row(dev)
	return &row, nil
}

func (i *Inspector) row(dev *model.Device) DeviceRow {
	return DeviceRow{
		DeviceInfo:   dev.Info(),
		OpenSessions: i.driver.OpenCount(dev.Minor()),
	}
}

// Attribute returns the value of the named attribute of a device as text.
func (i *Inspector) Attribute(minor int, name string) (string, error) {
	canonical, ok := ResolveAttributeName(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}

	row, err := i.InspectDevice(minor)
	if err != nil {
		return "", err
	}

	return row.Value(canonical)
}

// Value returns the named canonical attribute of the row as text.
func (r *DeviceRow) Value(name string) (string, error) {
	switch name {
	case AttrMinor:
		return strconv.Itoa(r.Minor), nil
	case AttrSerial:
		return r.Serial, nil
	case AttrSize:
		return strconv.Itoa(r.Size), nil
	case AttrPermission:
		return r.Permission.String(), nil
	case AttrOpenSessions:
		return strconv.Itoa(r.OpenSessions), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
}

// Resolve maps a path to a device minor, looking up serials in the table.
func (i *Inspector) Resolve(p *Path) (int, error) {
	if p.Serial == "" {
		if _, err := i.driver.Table().Lookup(p.Minor); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
		}
		return p.Minor, nil
	}

	for _, dev := range i.driver.Table().Devices() {
		if dev.Serial() == p.Serial {
			return dev.Minor(), nil
		}
	}
	return 0, fmt.Errorf("%w: serial %s", ErrDeviceNotFound, p.Serial)
}

// ReadPath reads the attribute addressed by a full path.
func (i *Inspector) ReadPath(p *Path) (string, error) {
	if p.IsPartial {
		return "", fmt.Errorf("%w: path has no attribute", ErrInvalidPath)
	}

	minor, err := i.Resolve(p)
	if err != nil {
		return "", err
	}
	return i.Attribute(minor, p.Attribute)
}
