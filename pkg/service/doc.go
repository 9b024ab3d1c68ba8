// Package service dispatches opens to pseudo character devices and runs the
// per-session read, write and seek operations.
//
// # Driver
//
// A Driver multiplexes the devices of one model.Table behind a single entry
// point. Open resolves a minor number to a device, checks the requested mode
// against the device permission and returns a Session bound to that device:
//
//	table := model.NewDefaultTable()
//	drv := service.NewDriver(table, service.DefaultDriverConfig())
//
//	s, err := drv.Open(2, model.ModeReadWrite)
//	if err != nil {
//	    return err
//	}
//	defer s.Release()
//
//	n, err := s.Write([]byte("hello"))
//	_, err = s.Seek(0, io.SeekStart)
//	n, err = s.Read(buf)
//
// # Sessions
//
// A Session has two states. Open is the only way to get a bound session;
// Release unbinds it. Read, Write and Seek on an unbound session fail with
// ErrNotOpen. Each session owns its cursor, while the device buffer is shared
// by every session bound to the same minor. Buffer copies are serialized per
// device, so concurrent sessions never observe a partially applied copy.
//
// # Errors
//
// Errors wrap the sentinels of packages model and fileops. ToErrno maps them
// to the errno values a character driver would report.
//
// # Tracing
//
// Every operation is reported to DriverConfig.AccessLogger (see package log)
// and, at debug level, to DriverConfig.Logger.
package service
