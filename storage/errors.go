package storage

import (
	"errors"
	"fmt"
)

// Storage errors, mapped one-to-one from the host's negative status codes.
var (
	// ErrInvalidArgs is returned for malformed keys or values, including the
	// local rejection of embedded NUL bytes before any host call.
	ErrInvalidArgs = errors.New("storage: invalid arguments")

	// ErrMallocFailed is returned when the host could not allocate.
	ErrMallocFailed = errors.New("storage: host allocation failed")

	// ErrUnexpectedDataType is returned when an item exists under a different
	// type tag, or when a fixed-width read returns the wrong byte count.
	ErrUnexpectedDataType = errors.New("storage: unexpected data type")

	// ErrBufferTooSmall is returned when a value does not fit the item bound.
	ErrBufferTooSmall = errors.New("storage: buffer too small")

	// ErrAlreadyExists is returned when the host refuses to overwrite.
	ErrAlreadyExists = errors.New("storage: item already exists")

	// ErrIO is returned when the backing medium failed.
	ErrIO = errors.New("storage: i/o error")

	// ErrNotFound is returned when no item exists under the key.
	ErrNotFound = errors.New("storage: item not found")

	// ErrNotInitialized is returned before the storage-init hook has fired.
	ErrNotInitialized = errors.New("storage: not initialized")

	// ErrInvalidVersion is returned when the host store has an incompatible
	// on-medium version.
	ErrInvalidVersion = errors.New("storage: invalid store version")

	// ErrAlreadyInitialized is returned by a second Init call.
	ErrAlreadyInitialized = errors.New("storage: already initialized")
)

// UnknownStatusError wraps a status code with no defined mapping.
// Non-negative codes other than StatusOK are host success variants that this
// layer has no meaning for, so they surface here too.
type UnknownStatusError struct {
	Code int32
}

// Error implements error.
func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("storage: unknown status code %d", e.Code)
}

// Host status codes. Negative codes are specific failures; non-negative codes
// are success, possibly with an implementation-specific meaning.
const (
	StatusOK                 int32 = 0
	StatusInvalidArgs        int32 = -1
	StatusMallocFailed       int32 = -2
	StatusUnexpectedDataType int32 = -3
	StatusBufferTooSmall     int32 = -4
	StatusAlreadyExists      int32 = -5
	StatusIOError            int32 = -6
	StatusNotFound           int32 = -7
	StatusNotInitialized     int32 = -8
	StatusInvalidVersion     int32 = -9
)

// errFromStatus maps a host status code to an error. StatusOK maps to nil;
// any other non-negative code collapses into UnknownStatusError.
func errFromStatus(code int32) error {
	if code == StatusOK {
		return nil
	}
	if code > 0 {
		return &UnknownStatusError{Code: code}
	}
	switch code {
	case StatusInvalidArgs:
		return ErrInvalidArgs
	case StatusMallocFailed:
		return ErrMallocFailed
	case StatusUnexpectedDataType:
		return ErrUnexpectedDataType
	case StatusBufferTooSmall:
		return ErrBufferTooSmall
	case StatusAlreadyExists:
		return ErrAlreadyExists
	case StatusIOError:
		return ErrIO
	case StatusNotFound:
		return ErrNotFound
	case StatusNotInitialized:
		return ErrNotInitialized
	case StatusInvalidVersion:
		return ErrInvalidVersion
	default:
		return &UnknownStatusError{Code: code}
	}
}
