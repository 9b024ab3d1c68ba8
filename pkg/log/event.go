package log

import (
	"io"
	"time"

	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Event represents one traced device access.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session (UUID). Empty for failed opens.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Op is the operation performed.
	Op Op `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Minor is the device identity the operation targeted.
	Minor int `cbor:"5,keyasint"`

	// Serial is the device serial number (empty if the device was not found).
	Serial string `cbor:"6,keyasint,omitempty"`

	// Operation-specific payload (at most one of these is set).
	Open     *OpenEvent     `cbor:"7,keyasint,omitempty"`
	Transfer *TransferEvent `cbor:"8,keyasint,omitempty"`
	Seek     *SeekEvent     `cbor:"9,keyasint,omitempty"`

	// Error is set when the operation failed.
	Error *ErrorEventData `cbor:"10,keyasint,omitempty"`
}

// Op is the device operation an event describes.
type Op uint8

const (
	// OpOpen is a session open.
	OpOpen Op = 0
	// OpRelease is a session release.
	OpRelease Op = 1
	// OpRead is a read from the device buffer.
	OpRead Op = 2
	// OpWrite is a write to the device buffer.
	OpWrite Op = 3
	// OpSeek is a cursor reposition.
	OpSeek Op = 4
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpOpen:
		return "OPEN"
	case OpRelease:
		return "RELEASE"
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpSeek:
		return "SEEK"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySession indicates an open or release.
	CategorySession Category = 0
	// CategoryIO indicates a read, write or seek.
	CategoryIO Category = 1
	// CategoryError indicates a failed operation of any kind.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySession:
		return "SESSION"
	case CategoryIO:
		return "IO"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// OpenEvent captures the access decision of an open.
type OpenEvent struct {
	// Mode is the requested access mode.
	Mode model.Mode `cbor:"1,keyasint"`

	// Permission is the device's declared permission (zero if not found).
	Permission model.Permission `cbor:"2,keyasint,omitempty"`
}

// TransferEvent captures a read or write.
type TransferEvent struct {
	// Requested is the byte count the caller asked for.
	Requested int `cbor:"1,keyasint"`

	// Count is the byte count actually transferred.
	Count int `cbor:"2,keyasint"`

	// Offset is the cursor position before the transfer.
	Offset int64 `cbor:"3,keyasint"`

	// Position is the cursor position after the transfer.
	Position int64 `cbor:"4,keyasint"`
}

// SeekEvent captures a cursor reposition.
type SeekEvent struct {
	// Offset is the requested offset relative to Whence.
	Offset int64 `cbor:"1,keyasint"`

	// Whence is io.SeekStart, io.SeekCurrent or io.SeekEnd.
	Whence int `cbor:"2,keyasint"`

	// From is the cursor position before the seek.
	From int64 `cbor:"3,keyasint"`

	// Position is the cursor position after the seek.
	Position int64 `cbor:"4,keyasint"`
}

// WhenceName returns "SET", "CUR" or "END".
func WhenceName(whence int) string {
	switch whence {
	case io.SeekStart:
		return "SET"
	case io.SeekCurrent:
		return "CUR"
	case io.SeekEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Errno is the errno value the dispatch layer reports (if applicable).
	Errno *int `cbor:"2,keyasint,omitempty"`
}
