package config

import (
	"errors"
	"fmt"
)

// Menu errors, mapped one-to-one from the config host's status codes.
var (
	// ErrInvalidArgument is returned for malformed host calls.
	ErrInvalidArgument = errors.New("config: invalid argument")

	// ErrOutOfMemory is returned when the host could not allocate.
	ErrOutOfMemory = errors.New("config: host out of memory")

	// ErrNotFound is returned when a handle or item is unknown to the host.
	ErrNotFound = errors.New("config: not found")

	// ErrInvalidPluginIdentifier is returned when the host rejects the
	// calling plugin.
	ErrInvalidPluginIdentifier = errors.New("config: invalid plugin identifier")

	// ErrMissingCallback is returned when a required callback is absent.
	ErrMissingCallback = errors.New("config: missing callback")

	// ErrModuleNotFound is returned when the host-side config module is
	// absent.
	ErrModuleNotFound = errors.New("config: host module not found")

	// ErrModuleMissingExport is returned when the host-side config module
	// lacks a required export.
	ErrModuleMissingExport = errors.New("config: host module missing export")

	// ErrUnsupportedVersion is returned on a host/plugin protocol version
	// mismatch.
	ErrUnsupportedVersion = errors.New("config: unsupported version")

	// ErrUnsupportedCommand is returned when the host rejects the operation.
	ErrUnsupportedCommand = errors.New("config: unsupported command")

	// ErrUninitialized is returned when the config host has not been bound
	// yet, or the host library rejected the call as uninitialized.
	ErrUninitialized = errors.New("config: host library uninitialized")

	// ErrAlreadyRegistered is returned by a second menu registration.
	ErrAlreadyRegistered = errors.New("config: menu already registered")

	// ErrNulByte is returned when an identifier or display text embeds a NUL
	// byte, rejected before any host call.
	ErrNulByte = errors.New("config: text contains NUL byte")
)

// UnknownStatusError wraps a config host status code with no defined
// mapping.
type UnknownStatusError struct {
	Code int32
}

// Error implements error.
func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("config: unknown status code %d", e.Code)
}

// Config host status codes.
const (
	StatusOK                       int32 = 0
	StatusInvalidArgument          int32 = -1
	StatusOutOfMemory              int32 = -2
	StatusNotFound                 int32 = -3
	StatusInvalidPluginIdentifier  int32 = -4
	StatusMissingCallback          int32 = -5
	StatusModuleNotFound           int32 = -6
	StatusModuleMissingExport      int32 = -7
	StatusUnsupportedVersion       int32 = -8
	StatusUnsupportedCommand       int32 = -9
	StatusLibUninitialized         int32 = -10
)

// Open-callback result codes reported back to the host.
const (
	CallbackResultSuccess int32 = 0
	CallbackResultError   int32 = -1
)

// errFromStatus maps a host status code to an error. As with storage,
// non-negative codes other than StatusOK are success variants collapsed into
// UnknownStatusError.
func errFromStatus(code int32) error {
	if code == StatusOK {
		return nil
	}
	if code > 0 {
		return &UnknownStatusError{Code: code}
	}
	switch code {
	case StatusInvalidArgument:
		return ErrInvalidArgument
	case StatusOutOfMemory:
		return ErrOutOfMemory
	case StatusNotFound:
		return ErrNotFound
	case StatusInvalidPluginIdentifier:
		return ErrInvalidPluginIdentifier
	case StatusMissingCallback:
		return ErrMissingCallback
	case StatusModuleNotFound:
		return ErrModuleNotFound
	case StatusModuleMissingExport:
		return ErrModuleMissingExport
	case StatusUnsupportedVersion:
		return ErrUnsupportedVersion
	case StatusUnsupportedCommand:
		return ErrUnsupportedCommand
	case StatusLibUninitialized:
		return ErrUninitialized
	default:
		return &UnknownStatusError{Code: code}
	}
}
