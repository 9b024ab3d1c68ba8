package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pcd-emu/pcd-go/pkg/log"
	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Driver resolves opens against a device table and hands out sessions.
type Driver struct {
	table  *model.Table
	config DriverConfig

	mu       sync.Mutex
	sessions map[string]*Session
	open     []int // open session count per minor
}

// NewDriver creates a driver serving the devices of table.
func NewDriver(table *model.Table, config DriverConfig) *Driver {
	return &Driver{
		table:    table,
		config:   config,
		sessions: make(map[string]*Session),
		open:     make([]int, table.Len()),
	}
}

// Table returns the device table.
func (d *Driver) Table() *model.Table {
	return d.table
}

// Open binds a new session to the device with the given minor number.
// It fails with model.ErrNoSuchDevice if the minor is not in the table and
// with model.ErrPermissionDenied if mode is incompatible with the device
// permission. No session exists after a failed Open.
func (d *Driver) Open(minor int, mode model.Mode) (*Session, error) {
	if logger := d.config.Logger; logger != nil {
		logger.Debug("open request", "minor", minor, "mode", mode.String())
	}

	dev, err := d.table.Lookup(minor)
	if err != nil {
		d.trace(log.Event{
			Op:    log.OpOpen,
			Minor: minor,
			Open:  &log.OpenEvent{Mode: mode},
		}, err)
		return nil, err
	}

	if err := model.CheckAccess(dev.Permission(), mode); err != nil {
		d.trace(log.Event{
			Op:     log.OpOpen,
			Minor:  minor,
			Serial: dev.Serial(),
			Open:   &log.OpenEvent{Mode: mode, Permission: dev.Permission()},
		}, err)
		return nil, err
	}

	s := &Session{
		id:     uuid.New().String(),
		driver: d,
		minor:  minor,
		mode:   mode,
		device: dev,
	}

	d.mu.Lock()
	d.sessions[s.id] = s
	d.open[minor]++
	d.mu.Unlock()

	d.trace(log.Event{
		SessionID: s.id,
		Op:        log.OpOpen,
		Minor:     minor,
		Serial:    dev.Serial(),
		Open:      &log.OpenEvent{Mode: mode, Permission: dev.Permission()},
	}, nil)

	if logger := d.config.Logger; logger != nil {
		logger.Debug("open succeeded", "minor", minor, "session", s.id)
	}
	return s, nil
}

// OpenFlags is Open with the access mode taken from os.OpenFile style flags.
func (d *Driver) OpenFlags(minor int, flags int) (*Session, error) {
	return d.Open(minor, model.ModeFromFlags(flags))
}

// OpenCount returns the number of bound sessions on a device.
// It returns 0 for minors outside the table.
func (d *Driver) OpenCount(minor int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if minor < 0 || minor >= len(d.open) {
		return 0
	}
	return d.open[minor]
}

// Sessions returns the bound sessions ordered by minor, then session ID.
func (d *Driver) Sessions() []*Session {
	d.mu.Lock()
	result := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		result = append(result, s)
	}
	d.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].minor != result[j].minor {
			return result[i].minor < result[j].minor
		}
		return result[i].id < result[j].id
	})
	return result
}

// ReleaseAll releases every bound session.
func (d *Driver) ReleaseAll() {
	for _, s := range d.Sessions() {
		_ = s.Release()
	}
}

// forget removes a released session from the driver's bookkeeping.
func (d *Driver) forget(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, s.id)
	if d.open[s.minor] > 0 {
		d.open[s.minor]--
	}
}

// trace fills in the common event fields and sends the event to the access
// logger.
func (d *Driver) trace(event log.Event, err error) {
	if d == nil || d.config.AccessLogger == nil {
		return
	}

	event.Timestamp = time.Now()
	switch event.Op {
	case log.OpOpen, log.OpRelease:
		event.Category = log.CategorySession
	default:
		event.Category = log.CategoryIO
	}

	if err != nil {
		event.Category = log.CategoryError
		errno := int(ToErrno(err))
		event.Error = &log.ErrorEventData{Message: err.Error(), Errno: &errno}
	}

	d.config.AccessLogger.Log(event)
}
