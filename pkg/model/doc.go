// Package model implements the pseudo character device data model.
//
// # Devices and the Table
//
// A Device is one emulated character device: a fixed-size byte buffer with an
// identity (its minor number), an informational serial number and a declared
// access permission. Devices are never resized or reconfigured once created.
//
// A Table is the driver-level collection of devices. It is built once at
// startup from a list of DeviceSpec values and assigns minor numbers in
// construction order, starting at 0:
//
//	Table
//	├── minor 0  PCDXYZ_1_Q  512 bytes  RDONLY
//	├── minor 1  PCDXYZ_2_Q  512 bytes  WRONLY
//	├── minor 2  PCDXYZ_3_Q  512 bytes  RDWR
//	└── minor 3  PCDXYZ_4_Q  512 bytes  RDWR
//
// The table is read-only after construction, so Lookup needs no locking.
//
// # Access Control
//
// Every device declares a Permission. Callers ask for a Mode when opening a
// device; CheckAccess decides whether the requested mode is compatible:
//   - RDWR devices accept every mode
//   - RDONLY devices accept read-only modes
//   - WRONLY devices accept write-only modes
//
// # Buffer Access
//
// The buffer is reachable only through ReadAt and WriteAt, which serialize
// copies with a per-device lock. Cursor handling and bounds clamping live in
// package fileops.
package model
